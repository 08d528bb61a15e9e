package cmd

import (
	"fmt"

	"refdata-manager/core/config"
	"refdata-manager/core/database"
	"refdata-manager/core/logger"
	"refdata-manager/core/schema"
	"refdata-manager/core/storage"
	"refdata-manager/feature/refdata"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	registry *schema.Registry
	client   storage.Client
}

// bootstrap loads configuration and opens the database and, when enabled, the bucket client.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry, err := schema.Load(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	a := &app{cfg: cfg, log: logg, db: db, registry: registry}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.client = client
	}
	return a, nil
}

func (a *app) service() *refdata.Service {
	return refdata.NewService(a.db, a.registry, a.client, a.cfg.Storage, a.log)
}
