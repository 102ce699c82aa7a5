// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package csvfile splits, compresses and combines CSV files used for staging.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

var ErrInvalidDestination = errors.New("destination must end with .csv or .csv.gz")

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// part is one gzip file being written.
type part struct {
	path    string
	file    *os.File
	gz      *pgzip.Writer
	counter *countingWriter
	csv     *csv.Writer
}

func createPart(path string, header []string) (*part, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	p := &part{path: path, file: f, gz: pgzip.NewWriter(f)}
	p.counter = &countingWriter{w: p.gz}
	p.csv = csv.NewWriter(p.counter)

	if err := p.write(header); err != nil {
		p.abort()
		return nil, err
	}
	// The header does not count towards the part size.
	p.counter.n = 0
	return p, nil
}

func (p *part) write(record []string) error {
	if err := p.csv.Write(record); err != nil {
		return err
	}
	p.csv.Flush()
	return p.csv.Error()
}

func (p *part) close() error {
	p.csv.Flush()
	if err := p.csv.Error(); err != nil {
		p.abort()
		return err
	}
	if err := p.gz.Close(); err != nil {
		p.abort()
		return err
	}
	return p.file.Close()
}

func (p *part) abort() {
	_ = p.gz.Close()
	_ = p.file.Close()
	_ = os.Remove(p.path)
}

// PartName returns the name of the n-th compressed part of src.
func PartName(src string, n int) string {
	base := strings.TrimSuffix(filepath.Base(src), ".csv")
	return fmt.Sprintf("%s_part%06d.csv.gz", base, n)
}

// SplitCompress streams src into gzip compressed parts under dir, each
// starting with the header row. A part is closed once its uncompressed rows
// reach maxBytes. Each part path is yielded once complete; ownership of the
// file passes to the receiver. A read or write failure is yielded as an error
// and ends the sequence.
func SplitCompress(ctx context.Context, src, dir string, maxBytes int64) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if maxBytes <= 0 {
			yield("", fmt.Errorf("invalid part size %d", maxBytes))
			return
		}

		f, err := os.Open(src)
		if err != nil {
			yield("", err)
			return
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.ReuseRecord = true

		header, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%s has no header row", src)
			}
			yield("", err)
			return
		}
		header = append([]string(nil), header...)

		var (
			current *part
			count   int
		)
		defer func() {
			if current != nil {
				current.abort()
			}
		}()

		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield("", fmt.Errorf("failed to read %s: %w", src, err))
				return
			}

			if current == nil {
				count++
				current, err = createPart(filepath.Join(dir, PartName(src, count)), header)
				if err != nil {
					yield("", err)
					return
				}
			}
			if err := current.write(record); err != nil {
				yield("", err)
				return
			}

			if current.counter.n >= maxBytes {
				done := current
				current = nil
				if err := done.close(); err != nil {
					yield("", err)
					return
				}
				if !yield(done.path, nil) {
					return
				}
			}
		}

		// A file with a header only still produces one part so the load sees the columns.
		if current == nil && count == 0 {
			current, err = createPart(filepath.Join(dir, PartName(src, 1)), header)
			if err != nil {
				yield("", err)
				return
			}
		}
		if current != nil {
			done := current
			current = nil
			if err := done.close(); err != nil {
				yield("", err)
				return
			}
			yield(done.path, nil)
		}
	}
}

// Open returns a reader over path, transparently decompressing .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.file.Close())
}

// ReadHeader returns the first row of a plain or gzip compressed CSV file.
func ReadHeader(path string) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	header, err := csv.NewReader(rc).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return header, nil
}

// Combine concatenates CSV parts into dst keeping only the first header.
// Sources may be gzip compressed; dst is compressed when it ends with .gz.
func Combine(srcs []string, dst string, deleteSources bool) error {
	if !strings.HasSuffix(dst, ".csv") && !strings.HasSuffix(dst, ".csv.gz") {
		return ErrInvalidDestination
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	var (
		sink io.Writer = out
		gz   *pgzip.Writer
	)
	if strings.HasSuffix(dst, ".gz") {
		gz = pgzip.NewWriter(out)
		sink = gz
	}
	w := csv.NewWriter(sink)

	err = combineInto(w, srcs)
	w.Flush()
	err = errors.Join(err, w.Error())
	if gz != nil {
		err = errors.Join(err, gz.Close())
	}
	err = errors.Join(err, out.Close())
	if err != nil {
		_ = os.Remove(dst)
		return err
	}

	if deleteSources {
		for _, src := range srcs {
			if err := os.Remove(src); err != nil {
				return err
			}
		}
	}
	return nil
}

func combineInto(w *csv.Writer, srcs []string) error {
	first := true
	for _, src := range srcs {
		rc, err := Open(src)
		if err != nil {
			return err
		}

		r := csv.NewReader(rc)
		r.FieldsPerRecord = -1
		r.ReuseRecord = true

		header, err := r.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			rc.Close()
			return fmt.Errorf("failed to read %s: %w", src, err)
		}
		if first && err == nil {
			if err := w.Write(header); err != nil {
				rc.Close()
				return err
			}
			first = false
		}

		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rc.Close()
				return fmt.Errorf("failed to read %s: %w", src, err)
			}
			if err := w.Write(record); err != nil {
				rc.Close()
				return err
			}
		}
		rc.Close()
	}
	return nil
}
