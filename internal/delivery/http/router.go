package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"crewplanner/internal/delivery/http/controllers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"
)

// RouterDeps carries everything the router needs to wire routes.
type RouterDeps struct {
	Logger        *slog.Logger
	Verifier      domain.TokenVerifier
	CronSecret    string
	Auth          *controllers.AuthController
	Availability  *controllers.AvailabilityController
	Notifications *controllers.NotificationController
	Push          *controllers.PushController
	Cron          *controllers.CronController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(deps.Verifier, deps.Logger)
	requireCron := middleware.RequireCronSecret(deps.CronSecret)

	// Auth
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)

	// Availability
	mux.HandleFunc("POST /events/{eventID}/availability", requireAuth(deps.Availability.Set))

	// Notifications
	mux.HandleFunc("GET /notifications", requireAuth(deps.Notifications.List))
	mux.HandleFunc("GET /notifications/count", requireAuth(deps.Notifications.UnreadCount))
	mux.HandleFunc("POST /notifications/{notificationID}/read", requireAuth(deps.Notifications.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", requireAuth(deps.Notifications.MarkAllRead))
	mux.HandleFunc("DELETE /notifications/read", requireAuth(deps.Notifications.DeleteRead))

	// Push subscriptions
	mux.HandleFunc("POST /push/subscribe", requireAuth(deps.Push.Subscribe))
	mux.HandleFunc("POST /push/unsubscribe", requireAuth(deps.Push.Unsubscribe))

	// Cron triggers
	mux.HandleFunc("GET /cron/reminders", requireCron(deps.Cron.RunReminders))
	mux.HandleFunc("GET /cron/birthdays", requireCron(deps.Cron.RunBirthdays))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
