// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package bigquery runs warehouse statements and moves CSV data in and out
// of tables through a staging bucket.
package bigquery

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	bq "cloud.google.com/go/bigquery"
	"github.com/dustin/go-humanize"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
)

const (
	defaultChunkSize = 3 << 30
	stagingPrefix    = "tmp/utill/bq"
)

type Config struct {
	ProjectID string
	Location  string
	// ChunkSize bounds the uncompressed size of each staged part.
	ChunkSize int64
	// QueueSize bounds how many compressed parts wait for upload.
	QueueSize int
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	runner JobRunnerInterface
	store  ObjectStoreInterface

	chunkSize int64
	queueSize int

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// ExecuteQuery runs the statements as a single script and logs the job statistics.
func (c *Client) ExecuteQuery(ctx context.Context, queries []string, params map[string]any) (*JobStats, error) {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.ExecuteQuery")
	defer span.End()

	script := JoinStatements(queries...)
	if script == "" {
		return nil, fmt.Errorf("no statement to execute")
	}
	return c.run(ctx, script, params)
}

func (c *Client) run(ctx context.Context, sql string, params map[string]any) (*JobStats, error) {
	c.logger.Debugf("Executing:\n%s", sql)

	stats, err := c.runner.Run(ctx, sql, queryParameters(params))
	if err != nil {
		c.monitor.SetDependencyAvailability(map[string]string{"component": "bigquery"}, 0)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	c.monitor.SetDependencyAvailability(map[string]string{"component": "bigquery"}, 1)

	c.logger.Infof(
		"Job %s done in %s: %s processed, %s billed, %d rows affected",
		stats.JobID,
		stats.Elapsed.Round(time.Millisecond),
		humanize.Bytes(uint64(max(stats.BytesProcessed, 0))),
		humanize.Bytes(uint64(max(stats.BytesBilled, 0))),
		stats.AffectedRows,
	)
	return stats, nil
}

// LoadData loads files already staged in the bucket into a table.
func (c *Client) LoadData(ctx context.Context, opts LoadOptions) (*JobStats, error) {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.LoadData")
	defer span.End()

	sql, err := LoadDataQuery(opts)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, sql, nil)
}

// ExportData writes the result of query to the bucket.
func (c *Client) ExportData(ctx context.Context, query string, opts ExportOptions, params map[string]any) (*JobStats, error) {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.ExportData")
	defer span.End()

	sql, err := ExportDataQuery(query, opts)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, sql, params)
}

func (c *Client) TableExists(ctx context.Context, name string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.TableExists")
	defer span.End()

	fqn, err := ParseTableFQN(name)
	if err != nil {
		return false, err
	}
	return c.runner.TableExists(ctx, fqn)
}

// DropTable deletes a table. A missing table is not an error.
func (c *Client) DropTable(ctx context.Context, name string) error {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.DropTable")
	defer span.End()

	fqn, err := ParseTableFQN(name)
	if err != nil {
		return err
	}
	if err := c.runner.DeleteTable(ctx, fqn); err != nil {
		return fmt.Errorf("failed to drop %s: %w", fqn, err)
	}
	c.logger.Infof("Dropped %s", fqn)
	return nil
}

func (c *Client) Close() error {
	return c.runner.Close()
}

func queryParameters(params map[string]any) []bq.QueryParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]bq.QueryParameter, 0, len(params))
	for _, name := range slices.Sorted(maps.Keys(params)) {
		out = append(out, bq.QueryParameter{Name: name, Value: params[name]})
	}
	return out
}

func newClient(runner JobRunnerInterface, store ObjectStoreInterface, cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	c := new(Client)

	c.runner = runner
	c.store = store
	c.chunkSize = cfg.ChunkSize
	if c.chunkSize <= 0 {
		c.chunkSize = defaultChunkSize
	}
	c.queueSize = cfg.QueueSize

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}

// NewClient connects to the warehouse. store may be nil when only statements are run.
func NewClient(ctx context.Context, cfg Config, store ObjectStoreInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	project := cfg.ProjectID
	if project == "" {
		project = bq.DetectProjectID
	}

	client, err := bq.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	client.Location = cfg.Location

	return newClient(&sdkRunner{client: client}, store, cfg, tracer, monitor, logger), nil
}
