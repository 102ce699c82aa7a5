// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
)

type StorageInterface interface {
	// Catalog lookups
	TableExists(ctx context.Context, table string) (bool, error)
	Columns(ctx context.Context, table string) ([]string, error)

	// Bulk transfer
	UploadCSV(ctx context.Context, src, table string) (int64, error)
	DownloadCSV(ctx context.Context, query, dst string) (int64, error)
	CopyTable(ctx context.Context, dst StorageInterface, srcTable, dstTable string, opts CopyOptions) (int64, error)
}
