package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"
)

const defaultNotificationLimit = 50

// NotificationController exposes the caller's in-app inbox.
type NotificationController struct {
	logger        *slog.Logger
	notifications domain.NotificationRepository
}

// NewNotificationController returns a NotificationController.
func NewNotificationController(logger *slog.Logger, notifications domain.NotificationRepository) *NotificationController {
	return &NotificationController{logger: logger, notifications: notifications}
}

// UnreadCountResponse is the response body for GET /notifications/count.
// swagger:model UnreadCountResponse
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadCount handles GET /notifications/count. Used by client polling, so a
// lookup failure degrades to zero instead of an error.
//
//	@Summary      Unread notification count
//	@Tags         notifications
//	@Produce      json
//	@Success      200 {object} UnreadCountResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /notifications/count [get]
func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	count, err := c.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		c.logger.Warn("unread count failed", "user_id", userID, "error", err)
		count = 0
	}
	writeFlatJSON(w, UnreadCountResponse{Count: count})
}

// List handles GET /notifications.
//
//	@Summary      List the caller's notifications, newest first
//	@Tags         notifications
//	@Produce      json
//	@Param        limit query int false "maximum rows (default 50)"
//	@Success      200 {object} helpers.APIResponse{data=[]domain.Notification}
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /notifications [get]
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	limit := defaultNotificationLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 && v <= 200 {
			limit = v
		}
	}
	ns, err := c.notifications.ListByUserID(r.Context(), userID, limit)
	if err != nil {
		c.logger.Error("list notifications failed", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ns)
}

// MarkRead handles POST /notifications/{notificationID}/read.
//
//	@Summary      Mark one notification read
//	@Tags         notifications
//	@Produce      json
//	@Param        notificationID path string true "notification ID"
//	@Success      200 {object} okResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /notifications/{notificationID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	notificationID := r.PathValue("notificationID")
	if err := c.notifications.MarkRead(r.Context(), notificationID, userID); err != nil {
		c.logger.Error("mark read failed", "user_id", userID, "notification_id", notificationID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, okResponse{OK: true})
}

// MarkAllRead handles POST /notifications/read-all.
//
//	@Summary      Mark all the caller's notifications read
//	@Tags         notifications
//	@Produce      json
//	@Success      200 {object} okResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.notifications.MarkAllRead(r.Context(), userID); err != nil {
		c.logger.Error("mark all read failed", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, okResponse{OK: true})
}

// DeleteReadResponse is the response body for DELETE /notifications/read.
// swagger:model DeleteReadResponse
type DeleteReadResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

// DeleteRead handles DELETE /notifications/read.
//
//	@Summary      Delete all the caller's read notifications
//	@Tags         notifications
//	@Produce      json
//	@Success      200 {object} DeleteReadResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Security     BearerAuth
//	@Router       /notifications/read [delete]
func (c *NotificationController) DeleteRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	deleted, err := c.notifications.DeleteRead(r.Context(), userID)
	if err != nil {
		c.logger.Error("delete read failed", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, DeleteReadResponse{OK: true, Deleted: deleted})
}
