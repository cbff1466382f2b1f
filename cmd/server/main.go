package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finsight/portal-server-go/internal/cache"
	"github.com/finsight/portal-server-go/internal/config"
	"github.com/finsight/portal-server-go/internal/database"
	"github.com/finsight/portal-server-go/internal/handler"
	"github.com/finsight/portal-server-go/internal/jobs"
	"github.com/finsight/portal-server-go/internal/mailer"
	"github.com/finsight/portal-server-go/internal/middleware"
	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/redis"
	"github.com/finsight/portal-server-go/internal/repository"
	"github.com/finsight/portal-server-go/internal/service"
	"github.com/finsight/portal-server-go/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	tokens, err := token.NewService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	userRepo := repository.NewUserRepository(db.DB)
	adminRepo := repository.NewAdminRepository(db.DB)
	linkRepo := repository.NewDashboardLinkRepository(db.DB)
	resetRepo := repository.NewPasswordResetTokenRepository(db.DB)

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		mail = mailer.NewLogSender()
	}

	linkCache := cache.New[*model.DashboardLink](cfg.LinkCacheMaxEntries, cfg.LinkCacheTTL())
	searchCache := cache.New[[]service.UserSearchResult](cfg.SearchCacheMaxEntries, cfg.SearchCacheTTL())

	authService := service.NewAuthService(userRepo, resetRepo, tokens, mail, cfg.UserTokenTTL(), cfg.PortalBaseURL)
	adminService := service.NewAdminService(
		adminRepo, userRepo, linkRepo, tokens,
		cfg.AdminCreationToken, cfg.AdminTokenTTL(), searchCache,
	)
	linkService := service.NewLinkService(linkRepo, linkCache)

	auth := middleware.NewAuthenticator(tokens)
	loginLimiter := middleware.NewLoginRateLimitMiddleware(redisClient.Client)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)
	dashboardHandler := handler.NewDashboardHandler(linkService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Post("/reset-password-request", authHandler.RequestPasswordReset)
	r.Post("/reset-password", authHandler.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(auth.Handler)
		r.Get("/profile", authHandler.Profile)
		r.Get("/dashboard/status", dashboardHandler.Status)
		r.Get("/dashboard/{section}", dashboardHandler.Section)
		r.Get("/dashboardlinks", dashboardHandler.GetLink)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Post("/signup", adminHandler.Signup)
			r.Post("/login", adminHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Handler)
			r.Use(auth.RequireRole(model.RoleAdmin))
			r.Get("/usersearch", adminHandler.SearchUsers)
			r.Post("/createuser", adminHandler.CreateUser)
			r.Post("/dashboardlinks", adminHandler.UpsertLink)
		})
	})

	r.Get("/*", handler.NewSPAHandler(cfg.StaticDir).ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(resetRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
