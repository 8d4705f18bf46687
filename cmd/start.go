package cmd

import (
	"log"

	"catalog-sync/core/loader"
	"catalog-sync/core/logger"
	"catalog-sync/core/metrics"
	"catalog-sync/core/middleware/auth"
	"catalog-sync/core/middleware/rayid"
	"catalog-sync/core/middleware/requestmetrics"
	"catalog-sync/feature/syncer"
	"catalog-sync/feature/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog sync server",
	Long:  `Starts the HTTP server exposing sync and validation endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger, database and provider client
		d, err := setup(cmd.Context(), true)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer d.close()
		zap.ReplaceGlobals(d.logger)
		logg := d.logger

		if !d.cfg.Server.IsValidMode() {
			logg.Fatal("Invalid server mode", zap.String("mode", d.cfg.Server.Mode))
		}
		if d.cfg.Server.ApiKey == "" {
			logg.Warn("No API key configured, endpoints are unprotected")
		}

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Register Features
		mgr := loader.NewManager(logg)
		syncService := syncer.NewService(d.collector, d.store, d.client, d.storage, d.cfg.Storage.Bucket, d.cfg.Sync, logg)
		mgr.Register(syncer.NewFeature(syncService, d.cfg.Server.AllowsMutations()))
		mgr.Register(validate.NewFeature(validate.NewService(d.collector, d.store, d.client, d.store, logg)))

		// 4. Middleware. RayID first so every log line can be traced.
		app.Use(rayid.New())
		app.Use(requestmetrics.New())
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

		// Public endpoints, served before the API key check.
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "mode": d.cfg.Server.Mode})
		})
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

		app.Use(auth.New(auth.Config{ApiKey: d.cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", d.cfg.Server.Port), zap.String("mode", d.cfg.Server.Mode))
			if err := app.Listen(":" + d.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown. Execute cancels the command context on SIGINT/SIGTERM.
		<-cmd.Context().Done()
		logg.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logg.Warn("Shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
