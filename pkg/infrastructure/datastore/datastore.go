package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/config"
)

func NewDSN() string {
	dsn := "postgres://" + config.C.Database.User + ":" + config.C.Database.Password + "@" + config.C.Database.Addr + ":" + config.C.Database.Port + "/" + config.C.Database.DBName + "?sslmode=disable"
	return dsn
}

// NewPool creates a pgx connection pool from the default DSN.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	return NewPoolWithDSN(ctx, NewDSN())
}

func NewPoolWithDSN(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool config: %w", err)
	}
	poolConfig.MaxConns = 20
	if config.C.Database.MaxConns > 0 {
		poolConfig.MaxConns = config.C.Database.MaxConns
	}
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Minute * 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}
