// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	Conn(context.Context) (*pgxpool.Conn, error)
	Ping(context.Context) error
	Close()
}
