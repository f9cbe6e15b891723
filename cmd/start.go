package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"coop-inventory/core/config"
	"coop-inventory/core/database"
	"coop-inventory/core/loader"
	"coop-inventory/core/logger"
	"coop-inventory/core/middleware/auth"
	"coop-inventory/core/middleware/rayid"
	"coop-inventory/core/storage"

	"coop-inventory/feature/catalog"
	"coop-inventory/feature/count"
	"coop-inventory/feature/export"
	"coop-inventory/feature/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Coop Inventory API
// @version 1.0
// @description Device-side API for cooperative offline inventory counting.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory counting service",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Device identity. Every event this device authors carries the
		// actor id, so one is generated when the config leaves it empty.
		if cfg.Device.ActorID == "" {
			cfg.Device.ActorID = uuid.NewString()
			logg.Info("Generated device actor id", zap.String("actor_id", cfg.Device.ActorID))
		}
		if !cfg.Device.IsValidTransport() {
			logg.Fatal("Unknown preferred transport", zap.String("transport", cfg.Device.PreferredTransport))
		}
		logg = logg.With(zap.String("actor_id", cfg.Device.ActorID))

		// 4. Connect to the local event store
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open local database", zap.Error(err))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Object Storage (Optional)
		// Counting and syncing never depend on connectivity; a failed storage
		// client only disables the totals export feature.
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed, export disabled", zap.Error(err))
		} else {
			store = client
		}

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		sessions := session.NewFeature(db, logg)
		// No BLE stack is wired on this build target; the count feature
		// falls back to the visual transport when the probe fails.
		counts := count.NewFeature(db, sessions.Service(), nil, cfg.Device, logg)

		mgr.Register(sessions)
		mgr.Register(counts)
		mgr.Register(catalog.NewFeature(db, logg))
		mgr.Register(export.NewFeature(store, cfg.Storage, counts.Service(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
