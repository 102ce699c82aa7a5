// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import "errors"

var (
	ErrTableNotFound   = errors.New("table not found, create it first")
	ErrInvalidTable    = errors.New("table name must be <table> or <schema>.<table>")
	ErrNoColumns       = errors.New("no column to copy")
	ErrInvalidFileName = errors.New("file must end with .csv or .csv.gz")
)
