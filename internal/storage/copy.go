// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/klauspost/pgzip"

	"github.com/canonical/utill/internal/csvfile"
	"github.com/canonical/utill/internal/pipeline"
)

const defaultChunkSize = 512 << 20

// CopyOptions tunes CopyTable.
type CopyOptions struct {
	// Columns to copy, every column of the source table when empty.
	Columns []string
	// ChunkSize bounds the uncompressed size of each staged part.
	ChunkSize int64
	// QueueSize bounds how many parts wait to be loaded.
	QueueSize int
}

func quoteColumns(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		quoted = append(quoted, pgx.Identifier{c}.Sanitize())
	}
	return strings.Join(quoted, ", ")
}

func copyFromSQL(t tableName, columns []string) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true, DELIMITER ',')", t.sanitize(), quoteColumns(columns))
}

func copyToSQL(query string) string {
	return fmt.Sprintf("COPY (%s) TO STDOUT WITH (FORMAT csv, HEADER true, DELIMITER ',')", strings.TrimSuffix(strings.TrimSpace(query), ";"))
}

func isCSV(name string) bool {
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}

// UploadCSV streams src into table with COPY. The columns are taken from the
// header row; gzip files are decompressed on the fly.
func (s *Storage) UploadCSV(ctx context.Context, src, table string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.UploadCSV")
	defer span.End()

	if !isCSV(src) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFileName, src)
	}
	t, err := parseTable(table)
	if err != nil {
		return 0, err
	}

	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, t)
	}

	header, err := csvfile.ReadHeader(src)
	if err != nil {
		return 0, err
	}
	if len(header) == 0 {
		return 0, fmt.Errorf("%w: %s has an empty header", ErrNoColumns, src)
	}

	rc, err := csvfile.Open(src)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	query := copyFromSQL(t, header)
	s.logger.Debugf("Query:\n%s", query)

	tag, err := conn.Conn().PgConn().CopyFrom(ctx, rc, query)
	if err != nil {
		return 0, fmt.Errorf("failed to copy %s into %s: %v", src, t, err)
	}

	s.logger.Infof("Loaded %d row(s) from %s into %s", tag.RowsAffected(), src, t)
	return tag.RowsAffected(), nil
}

// DownloadCSV writes the result of query to dst, compressed when dst ends with .gz.
func (s *Storage) DownloadCSV(ctx context.Context, query, dst string) (n int64, err error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.DownloadCSV")
	defer span.End()

	if !isCSV(dst) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFileName, dst)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	f, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(dst, ".gz") {
		gz := pgzip.NewWriter(f)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		w = gz
	}

	sql := copyToSQL(query)
	s.logger.Debugf("Query:\n%s", sql)

	tag, err := conn.Conn().PgConn().CopyTo(ctx, w, sql)
	if err != nil {
		return 0, fmt.Errorf("failed to export into %s: %v", dst, err)
	}
	return tag.RowsAffected(), nil
}

// CopyTable copies srcTable into dstTable on dst. The source rows are spilled
// to a local file, split into compressed parts, and each part is loaded while
// the next one is being prepared.
func (s *Storage) CopyTable(ctx context.Context, dst StorageInterface, srcTable, dstTable string, opts CopyOptions) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.CopyTable")
	defer span.End()

	src, err := parseTable(srcTable)
	if err != nil {
		return 0, err
	}
	if _, err := parseTable(dstTable); err != nil {
		return 0, err
	}

	exists, err := dst.TableExists(ctx, dstTable)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, dstTable)
	}

	columns := "*"
	if len(opts.Columns) > 0 {
		columns = quoteColumns(opts.Columns)
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	dir, err := os.MkdirTemp("", "utill-pg-")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	spill := filepath.Join(dir, src.name+".csv")

	p := pipeline.New(
		func(ctx context.Context) iter.Seq2[string, error] {
			return func(yield func(string, error) bool) {
				n, err := s.DownloadCSV(ctx, fmt.Sprintf("SELECT %s FROM %s", columns, src.sanitize()), spill)
				if err != nil {
					yield("", err)
					return
				}
				s.logger.Debugf("Exported %d row(s) from %s", n, src)

				for part, err := range csvfile.SplitCompress(ctx, spill, dir, chunk) {
					if !yield(part, err) {
						return
					}
				}
			}
		},
		func(ctx context.Context, part string) (int64, error) {
			defer os.Remove(part)
			return dst.UploadCSV(ctx, part, dstTable)
		},
		pipeline.WithCapacity(opts.QueueSize),
		pipeline.WithLogger(s.logger),
		pipeline.WithTracer(s.tracer),
	)

	_, loaded, err := p.Run(ctx)

	var total int64
	for _, n := range loaded {
		total += n
	}
	if err != nil {
		return total, fmt.Errorf("failed to copy %s to %s after %d row(s): %w", src, dstTable, total, err)
	}

	s.logger.Infof("Copied %d row(s) from %s to %s", total, src, dstTable)
	return total, nil
}
