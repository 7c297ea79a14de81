package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dict-manager/core/loader"
	"dict-manager/core/logger"
	"dict-manager/core/middleware/auth"
	"dict-manager/core/middleware/rayid"
	"dict-manager/feature/csvsync"
	"dict-manager/feature/datasync"
	"dict-manager/feature/dictionary"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Dict Manager API
// @version 1.0
// @description API for managing game IME dictionaries.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dictionary server",
	Long: `Runs startup reconciliation against the CSV directory, serves the HTTP API
and runs shutdown reconciliation on SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger, store and services
		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.close()
		zap.ReplaceGlobals(a.logger)
		logg := a.logger

		// 2. Startup reconciliation
		if out, err := a.sync.AutoStartup(ctx); err != nil {
			logg.Error("Startup sync failed", zap.Error(err))
		} else if out.Result != nil && !out.Result.Success {
			logg.Error("Startup import failed", zap.String("error", out.Result.Error))
		}

		// 3. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every log line is traceable
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		// 4. Features
		mgr := loader.NewManager(logg)
		mgr.Register(dictionary.NewFeature(a.dictionary))
		mgr.Register(csvsync.NewFeature(a.csv))
		mgr.Register(datasync.NewFeature(a.sync))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Serve
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port), zap.String("csv_dir", a.cfg.Sync.CSVDir))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful shutdown with exit reconciliation
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		if out, err := a.sync.AutoExit(ctx); err != nil {
			logg.Error("Shutdown sync failed", zap.Error(err))
		} else if out.Result != nil && !out.Result.Success {
			logg.Error("Shutdown export failed", zap.String("error", out.Result.Error))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
