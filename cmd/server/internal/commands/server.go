package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zenitmed/siteapi/internal/analytics"
	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/client"
	"github.com/zenitmed/siteapi/internal/config"
	"github.com/zenitmed/siteapi/internal/httpx"
	"github.com/zenitmed/siteapi/internal/logger"
	"github.com/zenitmed/siteapi/internal/notify"
	"github.com/zenitmed/siteapi/internal/server"
	"github.com/zenitmed/siteapi/internal/store"
	memorystore "github.com/zenitmed/siteapi/internal/store/memory"
	postgresstore "github.com/zenitmed/siteapi/internal/store/postgres"
)

type ServerCmd struct {
	// Server configuration
	Listen      string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"SITEAPI_LISTEN"`
	Environment string `help:"runtime environment" default:"development" env:"SITEAPI_ENV" enum:"development,production"`

	// Admin authentication
	SessionSecret string `help:"secret for signing admin session tokens" env:"SESSION_SECRET"`
	AdminPassword string `help:"admin back-office password" env:"ADMIN_PASSWORD"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"SITEAPI_CORS_ORIGINS"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"SITEAPI_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	// Notification channels
	SMTP     SMTPFlags     `embed:"" prefix:"smtp-"`
	Telegram TelegramFlags `embed:"" prefix:"telegram-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"DATABASE_URL"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"true" env:"SITEAPI_POSTGRES_AUTO_MIGRATE"`
}

type SMTPFlags struct {
	Host     string `help:"SMTP host, empty disables email notifications" env:"SMTP_HOST"`
	Port     int    `help:"SMTP port" default:"587" env:"SMTP_PORT"`
	Username string `help:"SMTP username" env:"SMTP_USER"`
	Password string `help:"SMTP password" env:"SMTP_PASSWORD"`
	From     string `help:"sender address" env:"SMTP_FROM"`
	Target   string `help:"address receiving admin notifications" env:"NOTIFICATION_EMAIL"`
}

type TelegramFlags struct {
	BotToken string `help:"Telegram bot token, empty disables telegram notifications" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `help:"Telegram chat id for notifications" env:"TELEGRAM_CHAT_ID"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Str("environment", c.Environment).Msg("Starting server")

	cfg := config.Config{
		Environment:   config.Environment(c.Environment),
		SessionSecret: c.SessionSecret,
		AdminPassword: c.AdminPassword,
	}

	// Fails loudly in production when no operator-supplied secret is set.
	secret, err := config.ResolveSecret(cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve session secret: %w", err)
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is not set, admin login will be rejected")
	}

	codec := auth.NewCodec(secret)
	resolver := auth.NewResolver(codec, cfg.Environment)

	stores, geoCache, cleanup, err := c.buildStores(ctx, log)
	if err != nil {
		return err
	}
	defer cleanup()

	recorder := logger.NewRecorder(stores.Logs)

	email := notify.NewEmailSender(notify.EmailConfig{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		Target:   c.SMTP.Target,
	})
	if email == nil {
		log.Warn().Msg("SMTP host not configured, email notifications disabled")
	}
	telegram := notify.NewTelegramSender(notify.TelegramConfig{
		BotToken: c.Telegram.BotToken,
		ChatID:   c.Telegram.ChatID,
	}, nil)
	if telegram == nil {
		log.Warn().Msg("Telegram credentials not configured, telegram notifications disabled")
	}
	notifier := notify.New(email, telegram)

	geo := analytics.NewGeoResolver(geoCache, client.NewCachingHTTPClient(3*time.Second))

	api := server.New(cfg, stores, codec, resolver, recorder, notifier, geo)

	clientIP := httpx.ClientIPMiddleware()
	accessLog := httpx.AccessLogMiddleware(recorder,
		"/health",
		"/api/admin/logs",
		"/api/admin/logs/stream",
		"/api/analytics/track",
	)
	handler := clientIP(accessLog(api.Handler()))

	// API routes get CORS, anything else gets CSRF protection.
	protection := csrf.New()
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRoute(r.URL.Path) {
			withCORS(c.CORSOrigins, handler).ServeHTTP(w, r)
		} else {
			protection.Handler(handler).ServeHTTP(w, r)
		}
	})

	srv := configureHTTPServer(c.Listen, root)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (c *ServerCmd) buildStores(ctx context.Context, log zerolog.Logger) (server.Stores, store.GeoCache, func(), error) {
	switch c.StoreType {
	case "postgres":
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		})
		if err != nil {
			return server.Stores{}, nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return server.Stores{}, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		analyticsStore := postgresstore.NewAnalyticsStore(pool)
		stores := server.Stores{
			Logs:        postgresstore.NewLogStore(pool),
			News:        postgresstore.NewNewsStore(pool),
			Conferences: postgresstore.NewConferenceStore(pool),
			Submissions: postgresstore.NewSubmissionStore(pool),
			Analytics:   analyticsStore,
			Images:      postgresstore.NewImageStore(pool),
			Banner:      postgresstore.NewBannerStore(pool),
		}
		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return stores, analyticsStore, pool.Close, nil

	default:
		analyticsStore := memorystore.NewAnalyticsStore()
		stores := server.Stores{
			Logs:        memorystore.NewLogStore(),
			News:        memorystore.NewNewsStore(),
			Conferences: memorystore.NewConferenceStore(),
			Submissions: memorystore.NewSubmissionStore(),
			Analytics:   analyticsStore,
			Images:      memorystore.NewImageStore(),
			Banner:      memorystore.NewBannerStore(),
		}
		log.Info().Msg("Using in-memory stores")
		return stores, analyticsStore, func() {}, nil
	}
}

// isAPIRoute returns true if the path is an API route that needs CORS instead of CSRF
func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/health"
}

// withCORS adds CORS support to the API handler.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization", auth.BypassHeader},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
