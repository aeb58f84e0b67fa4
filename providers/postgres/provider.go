// Package postgres registers the "postgres" connector provider: a pgx
// connection pool with information_schema based table introspection.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Konsultn-Engineering/sqlgen/connector"
	"github.com/Konsultn-Engineering/sqlgen/database"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

func (p *Provider) buildDSN(cfg connector.Config) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	b := connector.NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, port).
		Database(cfg.Database).
		WithPostgresDefaults().
		Param("sslmode", cfg.SSLMode)
	if secs := int(cfg.ConnectTimeout / time.Second); secs > 0 {
		b.Param("connect_timeout", strconv.Itoa(secs))
	}
	b.Params(cfg.Params)
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	return b.Build(), nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	dsn, err := p.buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	// apply defaults
	if cfg.Pool.MaxOpen <= 0 {
		cfg.Pool.MaxOpen = 10
	}
	if cfg.Pool.MaxIdle < 0 {
		cfg.Pool.MaxIdle = 5
	}
	if cfg.Pool.MaxLifetime == 0 {
		cfg.Pool.MaxLifetime = time.Hour
	}
	if cfg.Pool.MaxIdleTime == 0 {
		cfg.Pool.MaxIdleTime = 30 * time.Minute
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(cfg.Pool.MaxIdle)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &connection{pool: pool, db: database.NewPgxDatabase(pool), dialect: dialect.NewPostgresDialect()}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	pool    *pgxpool.Pool
	db      *database.PgxDatabase
	dialect dialect.Dialect
}

func (c *connection) Database() database.Database {
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
		MaxOpen:         int(s.MaxConns()),
	}
}

func (c *connection) Close() error {
	c.pool.Close()
	return nil
}

var _ connector.IntrospectingConnection = (*connection)(nil)
