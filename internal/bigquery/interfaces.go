// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"context"

	bq "cloud.google.com/go/bigquery"

	"github.com/canonical/utill/internal/objstore"
)

type ClientInterface interface {
	ExecuteQuery(context.Context, []string, map[string]any) (*JobStats, error)
	UploadCSV(context.Context, string, string, UploadOptions) (*JobStats, error)
	DownloadCSV(context.Context, string, string, map[string]any) error
	DownloadTable(context.Context, string, string) error
	TableExists(context.Context, string) (bool, error)
	DropTable(context.Context, string) error
	Close() error
}

// JobRunnerInterface executes statements against the warehouse.
type JobRunnerInterface interface {
	Run(context.Context, string, []bq.QueryParameter) (*JobStats, error)
	TableExists(context.Context, TableFQN) (bool, error)
	DeleteTable(context.Context, TableFQN) error
	Close() error
}

// ObjectStoreInterface is the staging bucket used by uploads and downloads.
type ObjectStoreInterface interface {
	URI(string) string
	TmpPrefix(string) string
	Upload(context.Context, string, string, bool) (string, error)
	Download(context.Context, string, string, bool) error
	List(context.Context, string) ([]objstore.Object, error)
	DeletePrefix(context.Context, string) (int, error)
}
