package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"
	"crewplanner/internal/services"
)

// AvailabilityController records availability answers for events.
type AvailabilityController struct {
	logger       *slog.Logger
	availability domain.AvailabilityService
	gate         *services.RateGate
}

// NewAvailabilityController returns an AvailabilityController. The rate gate
// bounds how often a single user may trigger this notification-producing
// action.
func NewAvailabilityController(logger *slog.Logger, availability domain.AvailabilityService, gate *services.RateGate) *AvailabilityController {
	return &AvailabilityController{logger: logger, availability: availability, gate: gate}
}

// SetAvailabilityRequest is the request body for POST /events/{eventID}/availability.
type SetAvailabilityRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Validate implements Validator.
func (s SetAvailabilityRequest) Validate() []string {
	var errs []string
	status := domain.AvailabilityStatus(strings.TrimSpace(strings.ToLower(s.Status)))
	if !status.Valid() {
		errs = append(errs, `status must be "available", "maybe", or "unavailable"`)
	}
	if status == domain.Unavailable && strings.TrimSpace(s.Reason) == "" {
		errs = append(errs, "reason is required when unavailable")
	}
	return errs
}

// Set handles POST /events/{eventID}/availability.
//
//	@Summary      Record the caller's availability for an event
//	@Tags         events
//	@Accept       json
//	@Produce      json
//	@Param        eventID path string true "event ID"
//	@Success      200 {object} helpers.APIResponse{data=domain.AvailabilityResponse}
//	@Failure      400 {object} helpers.APIResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Failure      403 {object} helpers.APIResponse
//	@Failure      404 {object} helpers.APIResponse
//	@Failure      429 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /events/{eventID}/availability [post]
func (c *AvailabilityController) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}

	if !c.gate.Allow(userID) {
		helpers.WriteJSONError(w, http.StatusTooManyRequests, helpers.ErrCodeTooManyRequests, "too many actions, try again later")
		return
	}

	var req SetAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	resp := &domain.AvailabilityResponse{
		EventID: r.PathValue("eventID"),
		UserID:  userID,
		Status:  domain.AvailabilityStatus(strings.TrimSpace(strings.ToLower(req.Status))),
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		resp.Reason = &reason
	}

	if err := c.availability.Set(r.Context(), resp); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not invited to this event")
		case errors.Is(err, domain.ErrReasonRequired), errors.Is(err, domain.ErrInvalidStatus):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.logger.Error("set availability failed", "user_id", userID, "event_id", resp.EventID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}
