package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request with the user already set in context, the way
// RequireAuth would have left it.
func authedRequest(method, target string, body io.Reader, userID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.SetUserID(req.Context(), userID))
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

type fakeReminderService struct {
	result domain.SweepResult
	err    error
}

func (f *fakeReminderService) RunSweep(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	return f.result, f.err
}

type fakeBirthdayService struct {
	result domain.BirthdayResult
	err    error
}

func (f *fakeBirthdayService) RunSweep(ctx context.Context, now time.Time) (domain.BirthdayResult, error) {
	return f.result, f.err
}

func TestCronController_RunReminders(t *testing.T) {
	t.Run("success returns flat counters", func(t *testing.T) {
		ctrl := NewCronController(testLogger(), &fakeReminderService{result: domain.SweepResult{Processed: 4, Sent: 3}}, &fakeBirthdayService{})

		req := httptest.NewRequest(http.MethodGet, "/cron/reminders", nil)
		rec := httptest.NewRecorder()
		ctrl.RunReminders(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body ReminderSweepResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.OK)
		assert.Equal(t, 4, body.Processed)
		assert.Equal(t, 3, body.Sent)
	})

	t.Run("sweep failure returns 500 envelope", func(t *testing.T) {
		ctrl := NewCronController(testLogger(), &fakeReminderService{err: errors.New("db down")}, &fakeBirthdayService{})

		req := httptest.NewRequest(http.MethodGet, "/cron/reminders", nil)
		rec := httptest.NewRecorder()
		ctrl.RunReminders(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, helpers.ErrCodeInternalError, env.Error.Code)
	})
}

func TestCronController_RunBirthdays(t *testing.T) {
	t.Run("success returns flat counters", func(t *testing.T) {
		ctrl := NewCronController(testLogger(), &fakeReminderService{}, &fakeBirthdayService{result: domain.BirthdayResult{Birthdays: 2, Notified: 2}})

		req := httptest.NewRequest(http.MethodGet, "/cron/birthdays", nil)
		rec := httptest.NewRecorder()
		ctrl.RunBirthdays(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body BirthdaySweepResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.OK)
		assert.Equal(t, 2, body.Birthdays)
		assert.Equal(t, 2, body.Notified)
	})

	t.Run("sweep failure returns 500 envelope", func(t *testing.T) {
		ctrl := NewCronController(testLogger(), &fakeReminderService{}, &fakeBirthdayService{err: errors.New("db down")})

		req := httptest.NewRequest(http.MethodGet, "/cron/birthdays", nil)
		rec := httptest.NewRecorder()
		ctrl.RunBirthdays(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, helpers.ErrCodeInternalError, env.Error.Code)
	})
}
