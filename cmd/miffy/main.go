package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/miffy/internal/api"
	"github.com/terraincognita07/miffy/internal/cli"
	"github.com/terraincognita07/miffy/internal/config"
	"github.com/terraincognita07/miffy/internal/db"
	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/metrics"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/terraincognita07/miffy/internal/services"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "miffy",
		Short:        "Wellness tracker API: medication schedule, moods, sleep, calendar and couples feed",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer appLogger.Close()

			database, err := db.OpenSQLite(cfg.DBPath, appLogger)
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (db: %s)\n", cfg.DBPath)
			return nil
		},
	}

	loginLink := &cobra.Command{
		Use:   "login-link",
		Short: "Issue a one-time sign-in link for an account without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, appLogger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer appLogger.Close()

			return cli.RunLoginLinkCommand(cmd.OutOrStdout(), cli.LoginLinkOptions{
				DBPath:    cfg.DBPath,
				Email:     email,
				SecretKey: cfg.SecretKey,
				SiteURL:   cfg.SiteURL,
				LinkTTL:   cfg.MagicLinkTTL,
				Logger:    appLogger,
			})
		},
	}
	loginLink.Flags().String("email", "", "account email address")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of miffy",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serve, migrate, loginLink, versionCmd)
	return root
}

func loadRuntime() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	appLogger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	time.Local = cfg.Location
	return cfg, appLogger, nil
}

func runServe(parent context.Context) error {
	cfg, appLogger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	database, err := db.OpenSQLite(cfg.DBPath, appLogger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	broker, err := newBroker(cfg, appLogger)
	if err != nil {
		return err
	}
	defer broker.Close()

	handler, err := api.NewHandler(database, broker, newLinkSender(cfg, appLogger), api.Options{
		SecretKey:         cfg.SecretKey,
		Location:          cfg.Location,
		CookieSecure:      cfg.CookieSecure,
		SiteURL:           cfg.SiteURL,
		MagicLinkTTL:      cfg.MagicLinkTTL,
		LinkRatePerMinute: cfg.MagicLinkRatePerMinute,
		Logger:            appLogger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	defer handler.Drain()

	app := newApp(handler, appLogger, cfg.MetricsEnabled)

	sigCtx, stopSignals := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.WithError(err).Warn("server shutdown failed")
		}
	}()

	appLogger.Infow("miffy listening",
		"addr", "0.0.0.0:"+cfg.Port,
		"db", cfg.DBPath,
		"tz", cfg.Location.String(),
		"redis", cfg.RedisURL != "",
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler, appLogger *logging.Logger, metricsEnabled bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "miffy",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New(compress.Config{Next: isEventStream}))
	app.Use(metrics.Middleware(appLogger))

	if metricsEnabled {
		app.Get("/metrics", metrics.Handler())
	}
	api.RegisterRoutes(app, handler)
	return app
}

// isEventStream keeps server-sent event responses out of the compressor,
// which would otherwise buffer them.
func isEventStream(c *fiber.Ctx) bool {
	return strings.HasSuffix(c.Path(), "/stream")
}

func newBroker(cfg *config.Config, appLogger *logging.Logger) (realtime.Broker, error) {
	if cfg.RedisURL == "" {
		return realtime.NewMemoryBroker(metrics.RealtimeObserver{}), nil
	}
	broker, err := realtime.NewRedisBroker(cfg.RedisURL, metrics.RealtimeObserver{}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("redis broker init failed: %w", err)
	}
	return broker, nil
}

func newLinkSender(cfg *config.Config, appLogger *logging.Logger) services.LinkSender {
	if cfg.LinkWebhookURL == "" {
		return services.NewLogLinkSender(appLogger)
	}
	return services.NewWebhookLinkSender(cfg.LinkWebhookURL)
}
