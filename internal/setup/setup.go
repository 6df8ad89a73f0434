package setup

import (
	"context"
	"log"
	"time"

	"github.com/robalyx/igsheet/internal/setup/config"
	"github.com/robalyx/igsheet/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
type App struct {
	Config     *config.Config     // Application configuration
	ConfigDir  string             // Directory of the loaded config file, if any
	Logger     *zap.Logger        // Main application logger
	LogManager *telemetry.Manager // Log management system
	StartTime  time.Time          // Time the application finished initializing
}

// InitializeApp loads configuration and builds the logger for the given service.
// The bot service requires a bot token.
func InitializeApp(_ context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if serviceType == telemetry.ServiceBot && cfg.Bot.Token == "" {
		return nil, config.ErrMissingToken
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Debug, serviceType == telemetry.ServiceBot)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	if configDir != "" {
		logger.Info("Loaded config file", zap.String("dir", configDir))
	} else {
		logger.Info("No config file found, using defaults and environment")
	}

	return &App{
		Config:     cfg,
		ConfigDir:  configDir,
		Logger:     logger,
		LogManager: logManager,
		StartTime:  time.Now().UTC(),
	}, nil
}

// Cleanup flushes logs and releases log files.
// Logs but does not fail on cleanup errors.
func (s *App) Cleanup(_ context.Context) {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	s.LogManager.Stop()
}
