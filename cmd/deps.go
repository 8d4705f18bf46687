package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/mapping"
	"catalog-sync/core/remote"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/syncer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps holds the components shared by the commands.
type deps struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	store     *mapping.GormStore
	client    remote.Client
	storage   storage.Client
	collector *catalog.Collector
}

// setup loads the configuration and connects the mapping database.
// withRemote also builds the provider client and the catalog collector.
func setup(ctx context.Context, withRemote bool) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &deps{
		cfg:    cfg,
		logger: logg,
		db:     db,
		store:  mapping.NewGormStore(db),
	}
	if !withRemote {
		return d, nil
	}

	stripeClient, err := remote.NewStripeClient(cfg.Stripe)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("failed to create stripe client: %w", err)
	}
	d.client = syncer.NewRetryingClient(stripeClient, cfg.Sync, logg)

	// Storage is only dialed when catalog documents or reports live in a bucket.
	if cfg.Catalog.HasStorageSources() || cfg.Sync.ReportPrefix != "" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.CheckBucket(ctx, client, cfg.Storage.Bucket); err != nil {
			d.close()
			return nil, err
		}
		d.storage = client
	}

	d.collector = catalog.NewCollector(cfg.Catalog, d.storage, cfg.Storage.Bucket, logg)
	return d, nil
}

func (d *deps) close() {
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = d.logger.Sync()
}
