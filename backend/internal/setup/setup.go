package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/anonboard/backend/internal/handler"
	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/backend/internal/storage/kv"
	"github.com/itchan-dev/anonboard/backend/internal/storage/pg"
	"github.com/itchan-dev/anonboard/backend/internal/storage/sqlite"
	"github.com/itchan-dev/anonboard/backend/internal/utils"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
)

var (
	_ service.BoardStorage = (*pg.Storage)(nil)
	_ service.BoardStorage = (*kv.Storage)(nil)
	_ service.BoardStorage = (*sqlite.Storage)(nil)
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage service.BoardStorage
	Handler *handler.Handler
	Config  *config.Config
}

// OpenStorage connects the driver selected by storage_driver. pool only
// applies to postgres.
func OpenStorage(ctx context.Context, cfg *config.Config, pool sharedpg.ConnectionConfig) (service.BoardStorage, error) {
	switch cfg.Public.StorageDriver {
	case config.DriverPostgres:
		storage, err := pg.NewWithPool(ctx, cfg.Private.Pg, pool)
		if err != nil {
			return nil, err
		}
		return storage, nil
	case config.DriverPebble:
		var (
			storage *kv.Storage
			err     error
		)
		if cfg.Private.PebblePath == "" {
			logger.Log.Warn("pebble_path is empty, threads will not survive a restart")
			storage, err = kv.OpenInMemory()
		} else {
			storage, err = kv.Open(cfg.Private.PebblePath, nil)
		}
		if err != nil {
			return nil, err
		}
		return storage, nil
	case config.DriverSqlite:
		storage, err := sqlite.Open(ctx, cfg.Private.SqlitePath)
		if err != nil {
			return nil, err
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Public.StorageDriver)
	}
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := OpenStorage(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}

	validator := &utils.PostValidator{}
	thread := service.NewThread(storage, validator, cfg.Public)
	reply := service.NewReply(storage, validator)

	return &Dependencies{
		Storage: storage,
		Handler: handler.New(thread, reply, storage, cfg),
		Config:  cfg,
	}, nil
}
