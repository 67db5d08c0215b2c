package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"crewplanner/config"
	_ "crewplanner/docs"
	authadapter "crewplanner/internal/adapters/auth"
	emailadapter "crewplanner/internal/adapters/email"
	"crewplanner/internal/adapters/identity"
	pushadapter "crewplanner/internal/adapters/push"
	httpdelivery "crewplanner/internal/delivery/http"
	"crewplanner/internal/delivery/http/controllers"
	"crewplanner/internal/delivery/http/middleware"
	"crewplanner/internal/domain"
	"crewplanner/internal/repository/postgres"
	"crewplanner/internal/services"
)

//	@title			CrewPlanner API
//	@version		1.0
//	@description	Team coordination backend: events, availability, reminders, and multi-channel notifications.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//
//	@securityDefinitions.apikey	CronSecret
//	@in							header
//	@name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Repositories
	members := postgres.NewTeamMemberRepository(db)
	events := postgres.NewEventRepository(db)
	reminders := postgres.NewReminderRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	pushSubs := postgres.NewPushSubscriptionRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	pushTransport := pushadapter.NewWebPushTransport(pushadapter.VAPIDConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subject:    cfg.VAPIDSubject,
	})
	if !pushTransport.Enabled() {
		logger.Warn("VAPID keys not configured, push channel disabled")
	}

	var identityProvider domain.IdentityProvider
	var roles domain.RoleProvider
	if cfg.IdentityProviderURL != "" {
		identityProvider = identity.NewHTTPProvider(&http.Client{Timeout: 10 * time.Second}, cfg.IdentityProviderURL, cfg.IdentityAPIKey)
		roles = services.NewIdentityRoleProvider(identityProvider)
	} else {
		roles = services.NewRosterRoleProvider(members)
	}

	// Services
	audience := services.NewAudienceResolver(events, roles)
	pushSender := services.NewPushService(pushSubs, pushTransport, logger)
	notifications := services.NewNotificationService(notificationRepo, pushSender, logger)
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer(), members, identityProvider, logger)
	reminderService := services.NewReminderService(reminders, events, audience, notifications, emailService, logger)
	birthdayService := services.NewBirthdayService(members, notifications, logger)
	availabilityService := services.NewAvailabilityService(events, members, audience, notifications, logger)
	authService := services.NewAuthService(members, hasher, issuer)
	gate := services.NewRateGate(cfg.ActionsPerHour, time.Hour, time.Now)

	// HTTP
	mux := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:        logger,
		Verifier:      verifier,
		CronSecret:    cfg.CronSecret,
		Auth:          controllers.NewAuthController(logger, authService),
		Availability:  controllers.NewAvailabilityController(logger, availabilityService, gate),
		Notifications: controllers.NewNotificationController(logger, notificationRepo),
		Push:          controllers.NewPushController(logger, pushSubs),
		Cron:          controllers.NewCronController(logger, reminderService, birthdayService),
	})

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
