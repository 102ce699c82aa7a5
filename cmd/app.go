// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/bigquery"
	"github.com/canonical/utill/internal/config"
	"github.com/canonical/utill/internal/db"
	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/metabase"
	"github.com/canonical/utill/internal/monitoring/prometheus"
	"github.com/canonical/utill/internal/objstore"
	"github.com/canonical/utill/internal/storage"
	"github.com/canonical/utill/internal/tracing"
	"github.com/canonical/utill/internal/tunnel"
	"github.com/canonical/utill/pkg/access"
)

const serviceName = "utill"

// app carries the ambient dependencies shared by every command.
type app struct {
	dir   string
	specs *config.EnvSpec

	logger  *logging.Logger
	tracer  *tracing.Tracer
	monitor *prometheus.Monitor
}

func configDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir != "" {
		return dir, nil
	}
	if dir = os.Getenv("UTILL_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	return config.DefaultDir()
}

func newApp(cmd *cobra.Command) (*app, error) {
	dir, err := configDir(cmd)
	if err != nil {
		return nil, err
	}

	specs, err := config.LoadEnvSpec(dir)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		specs.LogLevel = level
	}

	a := new(app)
	a.dir = dir
	a.specs = specs
	a.logger = logging.NewLogger(specs.LogLevel)
	a.monitor = prometheus.NewMonitor(serviceName, a.logger)
	a.tracer = tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, a.logger))

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.specs.MetricsTextfile != "" {
		if err := a.monitor.WriteTextfile(a.specs.MetricsTextfile); err != nil {
			a.logger.Warnf("failed to write metrics to %s: %v", a.specs.MetricsTextfile, err)
		}
	}
	if err := a.tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warnf("failed to flush traces: %v", err)
	}
	_ = a.logger.Sync()
}

var newAccessService = func(ctx context.Context, a *app) (access.ServiceInterface, error) {
	profile, err := config.LoadMetabaseProfile(a.dir)
	if err != nil {
		return nil, err
	}

	client, err := metabase.NewClient(
		metabase.Config{BaseURL: profile.BaseURL, APIKey: profile.APIKey},
		a.tracer,
		a.monitor,
		a.logger,
	)
	if err != nil {
		return nil, err
	}

	return access.NewService(client, profile.BaseURL, a.tracer, a.monitor, a.logger), nil
}

func (a *app) stagingConfig() (int64, int, error) {
	chunk, err := a.specs.ChunkSizeBytes()
	if err != nil {
		return 0, 0, err
	}
	return int64(chunk), a.specs.StagingQueueSize, nil
}

var newWarehouse = func(ctx context.Context, a *app, project string) (bigquery.ClientInterface, error) {
	if project == "" {
		project = a.specs.GCPProjectID
	}
	chunk, queue, err := a.stagingConfig()
	if err != nil {
		return nil, err
	}

	var store bigquery.ObjectStoreInterface
	if a.specs.GCSBucket != "" {
		s, err := objstore.NewStore(
			objstore.Config{
				Endpoint:  a.specs.GCSEndpoint,
				AccessKey: a.specs.GCSAccessKey,
				SecretKey: a.specs.GCSSecretKey,
				Bucket:    a.specs.GCSBucket,
				Region:    a.specs.GCPRegion,
			},
			a.tracer,
			a.monitor,
			a.logger,
		)
		if err != nil {
			return nil, err
		}
		store = s
	}

	return bigquery.NewClient(
		ctx,
		bigquery.Config{ProjectID: project, Location: a.specs.GCPRegion, ChunkSize: chunk, QueueSize: queue},
		store,
		a.tracer,
		a.monitor,
		a.logger,
	)
}

// openPostgres connects to a named profile, through its SSH bastion when one is configured.
var openPostgres = func(ctx context.Context, a *app, name string) (storage.StorageInterface, func(), error) {
	profile, err := config.LoadPostgresProfile(a.dir, name)
	if err != nil {
		return nil, nil, err
	}

	host, port := profile.Host, profile.Port
	closers := make([]func(), 0, 2)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if profile.UsesTunnel() {
		t, err := tunnel.Open(ctx, tunnel.Config{
			Host:       profile.TunnelHost,
			Port:       profile.TunnelPort,
			User:       profile.TunnelUsername,
			KeyPath:    profile.TunnelKey,
			KnownHosts: profile.KnownHosts,
		}, profile.Host, profile.Port, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open tunnel for profile %q: %w", name, err)
		}
		closers = append(closers, func() { _ = t.Close() })
		host, port = t.Addr()
	}

	client, err := db.NewDBClient(db.Config{
		DSN:            db.DSN(host, port, profile.Username, profile.Password, profile.DB),
		TracingEnabled: a.specs.TracingEnabled,
	}, a.tracer, a.monitor, a.logger)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, client.Close)

	if err := client.Ping(ctx); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("failed to connect to profile %q: %w", name, err)
	}
	a.logger.Debugf("PG client open: %s@%s:%d/%s", profile.Username, host, port, profile.DB)

	return storage.NewStorage(client, a.tracer, a.monitor, a.logger), closeAll, nil
}
