package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
)

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db *sql.DB
}

// New connects to postgres and makes sure the schema exists.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	return NewWithPool(ctx, cfg, sharedpg.DefaultConnectionConfig())
}

func NewWithPool(ctx context.Context, cfg config.Pg, pool sharedpg.ConnectionConfig) (*Storage, error) {
	logger.Component("postgres").Info("connecting", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, pool)
	if err != nil {
		return nil, err
	}
	s := &Storage{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Component("postgres").Info("connected")
	return s, nil
}

// Migrate applies the embedded schema in one transaction. It is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
