package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"
)

// PushController manages the caller's push subscription registry.
type PushController struct {
	logger *slog.Logger
	subs   domain.PushSubscriptionRepository
}

// NewPushController returns a PushController.
func NewPushController(logger *slog.Logger, subs domain.PushSubscriptionRepository) *PushController {
	return &PushController{logger: logger, subs: subs}
}

// SubscribeRequest is the request body for POST /push/subscribe.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Validate implements Validator.
func (s SubscribeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Endpoint) == "" {
		errs = append(errs, "endpoint is required")
	}
	if s.Keys.P256dh == "" {
		errs = append(errs, "keys.p256dh is required")
	}
	if s.Keys.Auth == "" {
		errs = append(errs, "keys.auth is required")
	}
	return errs
}

// UnsubscribeRequest is the request body for POST /push/unsubscribe.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Validate implements Validator.
func (u UnsubscribeRequest) Validate() []string {
	if strings.TrimSpace(u.Endpoint) == "" {
		return []string{"endpoint is required"}
	}
	return nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

// Subscribe handles POST /push/subscribe.
//
//	@Summary      Register a browser push endpoint
//	@Tags         push
//	@Accept       json
//	@Produce      json
//	@Success      200 {object} okResponse
//	@Failure      400 {object} helpers.APIResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /push/subscribe [post]
func (c *PushController) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}

	var req SubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	sub := &domain.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := c.subs.Upsert(r.Context(), sub); err != nil {
		c.logger.Error("push subscribe failed", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, okResponse{OK: true})
}

// Unsubscribe handles POST /push/unsubscribe.
//
//	@Summary      Remove the caller's subscription for an endpoint
//	@Tags         push
//	@Accept       json
//	@Produce      json
//	@Success      200 {object} okResponse
//	@Failure      400 {object} helpers.APIResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /push/unsubscribe [post]
func (c *PushController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}

	var req UnsubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := c.subs.DeleteByEndpoint(r.Context(), userID, req.Endpoint); err != nil {
		c.logger.Error("push unsubscribe failed", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, okResponse{OK: true})
}
