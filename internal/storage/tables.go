// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const defaultSchema = "public"

type tableName struct {
	schema string
	name   string
}

func parseTable(table string) (tableName, error) {
	parts := strings.Split(strings.TrimSpace(table), ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return tableName{schema: defaultSchema, name: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return tableName{schema: parts[0], name: parts[1]}, nil
	}
	return tableName{}, fmt.Errorf("%w: %q", ErrInvalidTable, table)
}

func (t tableName) sanitize() string {
	return pgx.Identifier{t.schema, t.name}.Sanitize()
}

func (t tableName) String() string {
	return t.schema + "." + t.name
}

// TableExists reports whether table is visible in information_schema.
func (s *Storage) TableExists(ctx context.Context, table string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.TableExists")
	defer span.End()

	t, err := parseTable(table)
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.Statement(ctx).
		Select("1").
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": t.schema, "table_name": t.name}).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query table %s: %v", t, err)
	}

	return true, nil
}

// Columns returns the column names of table in ordinal order.
func (s *Storage) Columns(ctx context.Context, table string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Columns")
	defer span.End()

	t, err := parseTable(table)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Statement(ctx).
		Select("column_name").
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": t.schema, "table_name": t.name}).
		OrderBy("ordinal_position ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %v", t, err)
	}
	defer rows.Close()

	columns := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan column: %v", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %v", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, t)
	}
	return columns, nil
}
