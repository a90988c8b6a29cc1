// Package persist keeps the run journal: one level_runs row per level run,
// opened when the run starts and stamped with its outcome when it ends.
package persist

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Journal is the Postgres pool behind the run journal. Opening it migrates the
// level_runs schema, so a Journal is always ready for a RunRepo.
type Journal struct {
	pool    *pgxpool.Pool
	version int64
}

// OpenJournal connects to cfg.DSN, checks the connection and applies pending
// journal migrations. Any failure closes the pool again.
func OpenJournal(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("journal dsn: %w", err)
	}
	applyPoolLimits(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	version, err := migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("run journal ready",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int64("schema_version", version))
	return &Journal{pool: pool, version: version}, nil
}

// applyPoolLimits sizes the pool from cfg. Zero values keep pgx's defaults and
// the idle floor never exceeds the open limit.
func applyPoolLimits(pc *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pc.MinConns = int32(cfg.MaxIdleConns)
	}
	if pc.MinConns > pc.MaxConns {
		pc.MinConns = pc.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
}

// migrate runs the embedded level_runs migrations and reports the resulting
// schema version.
func migrate(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("journal dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return 0, fmt.Errorf("migrate journal: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("journal version: %w", err)
	}
	return version, nil
}

// SchemaVersion is the goose version the journal was migrated to.
func (j *Journal) SchemaVersion() int64 { return j.version }

func (j *Journal) Close() { j.pool.Close() }
