// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
)

const applicationName = "utill"

var _ DBClientInterface = (*DBClient)(nil)

type Config struct {
	DSN            string
	MaxConns       int32
	TracingEnabled bool
}

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a squirrel builder bound to the pool with postgres placeholders.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(d.db)
}

// Conn acquires a raw connection, needed for COPY. Callers must Release it.
func (d *DBClient) Conn(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		d.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, 0)
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

func (d *DBClient) Ping(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.Ping")
	defer span.End()

	if err := d.pool.Ping(ctx); err != nil {
		d.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, 0)
		return err
	}
	d.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, 1)
	return nil
}

func (d *DBClient) Close() {
	d.db.Close()
	d.pool.Close()
}

// DSN builds a connection url for the given endpoint.
func DSN(host string, port int, user, password, database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + database,
	}
	q := u.Query()
	q.Set("application_name", applicationName)
	u.RawQuery = q.Encode()
	return u.String()
}

func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Errorf("DSN validation failed: %v", err)
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.TracingEnabled {
		poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Errorf("failed to create connection pool: %v", err)
		return nil, err
	}

	d := new(DBClient)

	d.pool = pool
	d.db = stdlib.OpenDBFromPool(pool)

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d, nil
}
