// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/canonical/utill/internal/csvfile"
	"github.com/canonical/utill/internal/pipeline"
)

var ErrNoStore = errors.New("no staging bucket configured")

// UploadOptions describes the destination of UploadCSV.
type UploadOptions struct {
	Columns     []Column
	PartitionBy string
	ClusterBy   []string
	Overwrite   bool
}

// UploadCSV splits src into compressed parts, stages them in the bucket while
// the next part is being written, then loads all of them into table with one
// statement. Staged objects are removed whatever the outcome.
func (c *Client) UploadCSV(ctx context.Context, src, table string, opts UploadOptions) (*JobStats, error) {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.UploadCSV")
	defer span.End()

	if c.store == nil {
		return nil, ErrNoStore
	}
	fqn, err := ParseTableFQN(table)
	if err != nil {
		return nil, err
	}
	if len(opts.Columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", ErrInvalidColumn)
	}

	dir, err := os.MkdirTemp("", "utill-bq-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	prefix := c.store.TmpPrefix(stagingPrefix)
	defer c.cleanup(context.WithoutCancel(ctx), prefix)

	p := pipeline.New(
		func(ctx context.Context) iter.Seq2[string, error] {
			return csvfile.SplitCompress(ctx, src, dir, c.chunkSize)
		},
		func(ctx context.Context, part string) (string, error) {
			return c.store.Upload(ctx, part, path.Join(prefix, filepath.Base(part)), true)
		},
		pipeline.WithCapacity(c.queueSize),
		pipeline.WithLogger(c.logger),
		pipeline.WithTracer(c.tracer),
	)

	_, uris, err := p.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", src, err)
	}
	c.logger.Infof("Staged %s as %d part(s) under %s", src, len(uris), c.store.URI(prefix))

	return c.LoadData(ctx, LoadOptions{
		Table:       fqn,
		URIs:        uris,
		Columns:     opts.Columns,
		PartitionBy: opts.PartitionBy,
		ClusterBy:   opts.ClusterBy,
		Overwrite:   opts.Overwrite,
		Format:      FormatCSV,
		Compression: CompressionGzip,
	})
}

// DownloadCSV exports the result of query to the bucket and combines the
// exported shards into dst, which must end in .csv or .csv.gz.
func (c *Client) DownloadCSV(ctx context.Context, query, dst string, params map[string]any) error {
	ctx, span := c.tracer.Start(ctx, "bigquery.Client.DownloadCSV")
	defer span.End()

	if c.store == nil {
		return ErrNoStore
	}
	if !strings.HasSuffix(dst, ".csv") && !strings.HasSuffix(dst, ".csv.gz") {
		return fmt.Errorf("%w: %s", csvfile.ErrInvalidDestination, dst)
	}

	prefix := c.store.TmpPrefix(stagingPrefix)
	defer c.cleanup(context.WithoutCancel(ctx), prefix)

	if _, err := c.ExportData(ctx, query, ExportOptions{
		URI:         c.store.URI(prefix + "/*.csv.gz"),
		Format:      FormatCSV,
		Compression: CompressionGzip,
		Header:      true,
	}, params); err != nil {
		return err
	}

	objects, err := c.store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("export produced no file under %s", c.store.URI(prefix))
	}

	dir, err := os.MkdirTemp("", "utill-bq-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	locals := make([]string, 0, len(objects))
	for _, obj := range objects {
		local := filepath.Join(dir, path.Base(obj.Key))
		if err := c.store.Download(ctx, obj.Key, local, true); err != nil {
			return err
		}
		locals = append(locals, local)
	}

	if err := csvfile.Combine(locals, dst, true); err != nil {
		return fmt.Errorf("failed to combine %d part(s) into %s: %w", len(locals), dst, err)
	}
	c.logger.Infof("Downloaded %d part(s) into %s", len(locals), dst)
	return nil
}

// DownloadTable downloads every row of table into dst.
func (c *Client) DownloadTable(ctx context.Context, table, dst string) error {
	fqn, err := ParseTableFQN(table)
	if err != nil {
		return err
	}
	return c.DownloadCSV(ctx, "SELECT * FROM "+fqn.Quoted(), dst, nil)
}

func (c *Client) cleanup(ctx context.Context, prefix string) {
	n, err := c.store.DeletePrefix(ctx, prefix)
	if err != nil {
		c.logger.Warnf("Failed to clean up %s: %v", c.store.URI(prefix), err)
		return
	}
	if n > 0 {
		c.logger.Debugf("Removed %d staged object(s) from %s", n, c.store.URI(prefix))
	}
}
