package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/domain"
)

// CronController exposes the batch endpoints hit by the external cron
// trigger. Responses use the flat shape the trigger expects rather than the
// API envelope.
type CronController struct {
	logger    *slog.Logger
	reminders domain.ReminderService
	birthdays domain.BirthdayService
}

// NewCronController returns a CronController.
func NewCronController(logger *slog.Logger, reminders domain.ReminderService, birthdays domain.BirthdayService) *CronController {
	return &CronController{logger: logger, reminders: reminders, birthdays: birthdays}
}

// ReminderSweepResponse is the response body for GET /cron/reminders.
// swagger:model ReminderSweepResponse
type ReminderSweepResponse struct {
	OK        bool `json:"ok"`
	Processed int  `json:"processed"`
	Sent      int  `json:"sent"`
}

// RunReminders handles GET /cron/reminders.
//
//	@Summary      Run the reminder sweep
//	@Tags         cron
//	@Produce      json
//	@Success      200 {object} ReminderSweepResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Failure      500 {object} helpers.APIResponse
//	@Security     CronSecret
//	@Router       /cron/reminders [get]
func (c *CronController) RunReminders(w http.ResponseWriter, r *http.Request) {
	result, err := c.reminders.RunSweep(r.Context(), time.Now())
	if err != nil {
		c.logger.Error("reminder sweep failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, ReminderSweepResponse{OK: true, Processed: result.Processed, Sent: result.Sent})
}

// BirthdaySweepResponse is the response body for GET /cron/birthdays.
// swagger:model BirthdaySweepResponse
type BirthdaySweepResponse struct {
	OK        bool `json:"ok"`
	Birthdays int  `json:"birthdays"`
	Notified  int  `json:"notified"`
}

// RunBirthdays handles GET /cron/birthdays.
//
//	@Summary      Announce today's roster birthdays
//	@Tags         cron
//	@Produce      json
//	@Success      200 {object} BirthdaySweepResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Failure      500 {object} helpers.APIResponse
//	@Security     CronSecret
//	@Router       /cron/birthdays [get]
func (c *CronController) RunBirthdays(w http.ResponseWriter, r *http.Request) {
	result, err := c.birthdays.RunSweep(r.Context(), time.Now())
	if err != nil {
		c.logger.Error("birthday sweep failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	writeFlatJSON(w, BirthdaySweepResponse{OK: true, Birthdays: result.Birthdays, Notified: result.Notified})
}

func writeFlatJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
