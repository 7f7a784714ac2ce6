package connector

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/Konsultn-Engineering/pgquery/database"
)

// Connect opens a pgx pool for cfg and wraps it as a database.Pool.
func Connect(ctx context.Context, cfg Config) (*database.PgxPool, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	connect := func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}

	var pool *pgxpool.Pool
	if cfg.Retry != nil {
		pool, err = retryConnect(ctx, cfg.Retry, connect)
		if err != nil {
			return nil, errors.Wrapf(err, "connect to %s:%d after %d attempts", cfg.Host, cfg.Port, cfg.Retry.MaxRetries)
		}
	} else {
		pool, err = connect(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "connect to %s:%d", cfg.Host, cfg.Port)
		}
	}

	return database.NewPgxPool(pool, cfg.QueryTimeout), nil
}

// poolConfig translates cfg into a pgxpool configuration.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(cfg.Pool.MinConns)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	if cfg.Pool.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = cfg.Pool.HealthCheckFreq
	}
	return poolCfg, nil
}
