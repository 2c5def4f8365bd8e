// Package main is the entry point for StyleLens.
package main

import (
	"context"
	"os"

	"stylelens-go/application"
	"stylelens-go/core/eventbus"
	"stylelens-go/domain/history"
	appconfig "stylelens-go/infrastructure/config"
	"stylelens-go/infrastructure/logging"
	"stylelens-go/infrastructure/ollama"
	"stylelens-go/infrastructure/repository"
	"stylelens-go/infrastructure/segformer"
	"stylelens-go/infrastructure/storage"
	"stylelens-go/presentation"

	"fyne.io/fyne/v2/app"
)

func main() {
	// Load configuration (defaults when no config file exists)
	cfgPath, err := appconfig.DefaultPath()
	if err != nil {
		cfgPath = ""
	}
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logging (dev: console only, prod: console + rotating file)
	logCfg := logging.DefaultConfig()
	logCfg.ConsoleLevel = logging.ParseLevel(cfg.Logging.ConsoleLevel)
	logCfg.FileLevel = logging.ParseLevel(cfg.Logging.FileLevel)
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting StyleLens")

	ctx := context.Background()

	// History storage: MongoDB when enabled, in-memory otherwise.
	// A connection failure degrades to in-memory rather than aborting.
	var historyRepo history.Repository = repository.NewMemoryHistoryRepository()
	if cfg.Mongo.Enabled {
		mongoCfg := repository.DefaultMongoDBConfig()
		mongoCfg.URI = cfg.Mongo.URI
		mongoCfg.Database = cfg.Mongo.Database

		mongoDB, err := repository.NewMongoDB(ctx, mongoCfg, logger)
		if err != nil {
			logger.Warn("MongoDB unavailable, history will not persist", "error", err)
		} else {
			defer mongoDB.Close(ctx)
			historyRepo = repository.NewMongoHistoryRepository(mongoDB, logger)
		}
	}
	historyService := history.NewService(historyRepo)

	// Initialize segmentation inference client
	segCfg := segformer.DefaultClientConfig()
	segCfg.BaseURL = cfg.Segformer.BaseURL
	segCfg.Timeout = cfg.Segformer.Timeout
	segCfg.HealthInterval = cfg.Segformer.HealthInterval
	segClient := segformer.NewHTTPClient(segCfg)
	defer segClient.Close()

	// Initialize caption model
	captioner, err := ollama.NewCaptioner(&ollama.CaptionerConfig{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize caption model", "error", err)
		os.Exit(1)
	}

	// Initialize model manager (models stay unloaded until first use)
	store := storage.NewFileStore()
	manager := application.NewModelManager(&application.ManagerConfig{
		Segmenter: segformer.NewModel(segClient, logger),
		Captioner: captioner,
		Store:     store,
		Logger:    logger,
	})

	// Initialize event bus
	eventBus := eventbus.New(100)
	defer eventBus.Close()

	// Initialize coordinator
	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		EventBus: eventBus,
		Manager:  manager,
		History:  historyService,
		Logger:   logger,
	})
	coordinator.Start()
	defer coordinator.Stop()

	// Initialize UI event bridge
	bridge := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Coordinator: coordinator,
		Manager:     manager,
		History:     historyService,
		EventBus:    eventBus,
		Logger:      logger,
	})
	defer bridge.Close()

	// Initialize Fyne app
	fyneApp := app.New()

	// Initialize main window
	mainWindow := presentation.NewMainWindow(&presentation.MainWindowConfig{
		App:    fyneApp,
		Bridge: bridge,
		Store:  store,
		Logger: logger,
	})
	defer mainWindow.Cleanup()

	// Show and run
	mainWindow.Show()
	fyneApp.Run()

	logger.Info("Application shutdown complete")
}
