// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"context"
	"errors"
	"net/http"
	"time"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// JobStats summarises a finished query job.
type JobStats struct {
	JobID          string
	Location       string
	BytesProcessed int64
	BytesBilled    int64
	AffectedRows   int64
	Elapsed        time.Duration
}

type sdkRunner struct {
	client *bq.Client
}

var _ JobRunnerInterface = (*sdkRunner)(nil)

func (r *sdkRunner) Run(ctx context.Context, sql string, params []bq.QueryParameter) (*JobStats, error) {
	q := r.client.Query(sql)
	q.Parameters = params

	start := time.Now()
	job, err := q.Run(ctx)
	if err != nil {
		return nil, err
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if err := status.Err(); err != nil {
		return nil, err
	}

	stats := &JobStats{JobID: job.ID(), Location: job.Location(), Elapsed: time.Since(start)}
	if status.Statistics != nil {
		stats.BytesProcessed = status.Statistics.TotalBytesProcessed
		if qs, ok := status.Statistics.Details.(*bq.QueryStatistics); ok {
			stats.BytesBilled = qs.TotalBytesBilled
			stats.AffectedRows = qs.NumDMLAffectedRows
		}
	}
	return stats, nil
}

func (r *sdkRunner) table(t TableFQN) *bq.Table {
	return r.client.DatasetInProject(t.Project, t.Dataset).Table(t.Table)
}

func (r *sdkRunner) TableExists(ctx context.Context, t TableFQN) (bool, error) {
	if _, err := r.table(t).Metadata(ctx); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *sdkRunner) DeleteTable(ctx context.Context, t TableFQN) error {
	if err := r.table(t).Delete(ctx); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (r *sdkRunner) Close() error {
	return r.client.Close()
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
