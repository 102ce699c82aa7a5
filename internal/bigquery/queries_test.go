// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTableFQN(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expected   TableFQN
		expectsErr bool
	}{
		{name: "three parts", input: "proj.ds.tbl", expected: TableFQN{"proj", "ds", "tbl"}},
		{name: "backticks", input: "`proj.ds.tbl`", expected: TableFQN{"proj", "ds", "tbl"}},
		{name: "two parts", input: "ds.tbl", expectsErr: true},
		{name: "four parts", input: "a.b.c.d", expectsErr: true},
		{name: "empty part", input: "a..c", expectsErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTableFQN(tt.input)
			if tt.expectsErr {
				if !errors.Is(err, ErrInvalidTableFQN) {
					t.Fatalf("expected ErrInvalidTableFQN, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %+v, got %+v", tt.expected, got)
			}
			if got.Quoted() != "`proj.ds.tbl`" {
				t.Fatalf("unexpected quoted name %s", got.Quoted())
			}
		})
	}
}

func TestLoadDataQuery(t *testing.T) {
	sql, err := LoadDataQuery(LoadOptions{
		Table:       TableFQN{"p", "d", "t"},
		URIs:        []string{"gs://b/a.csv.gz"},
		Columns:     []Column{{Name: "id", Type: "INT64"}, {Name: "name", Type: "string"}},
		ClusterBy:   []string{"id"},
		Compression: CompressionGzip,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "LOAD DATA INTO `p.d.t` (\n" +
		"  `id` INT64,\n" +
		"  `name` STRING\n" +
		")\n" +
		"CLUSTER BY `id`\n" +
		"FROM FILES (\n" +
		"  format='CSV',\n" +
		"  uris=['gs://b/a.csv.gz'],\n" +
		"  skip_leading_rows=1,\n" +
		"  field_delimiter=',',\n" +
		"  allow_quoted_newlines=true,\n" +
		"  compression='GZIP'\n" +
		")"
	if sql != expected {
		t.Fatalf("unexpected statement:\n%s\nexpected:\n%s", sql, expected)
	}
}

func TestLoadDataQueryOverwriteAndPartition(t *testing.T) {
	sql, err := LoadDataQuery(LoadOptions{
		Table:       TableFQN{"p", "d", "t"},
		URIs:        []string{"gs://b/1.csv", "gs://b/2.csv"},
		PartitionBy: "DATE(created_at)",
		Overwrite:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "LOAD DATA OVERWRITE `p.d.t`\n" +
		"PARTITION BY DATE(created_at)\n" +
		"FROM FILES (\n" +
		"  format='CSV',\n" +
		"  uris=['gs://b/1.csv', 'gs://b/2.csv'],\n" +
		"  skip_leading_rows=1,\n" +
		"  field_delimiter=',',\n" +
		"  allow_quoted_newlines=true\n" +
		")"
	if sql != expected {
		t.Fatalf("unexpected statement:\n%s\nexpected:\n%s", sql, expected)
	}
}

func TestLoadDataQueryValidation(t *testing.T) {
	if _, err := LoadDataQuery(LoadOptions{Table: TableFQN{"p", "d", "t"}}); err == nil {
		t.Fatal("expected error without uris")
	}

	_, err := LoadDataQuery(LoadOptions{
		Table:   TableFQN{"p", "d", "t"},
		URIs:    []string{"gs://b/a.csv"},
		Columns: []Column{{Name: "id", Type: "VARCHAR"}},
	})
	if !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
}

func TestExportDataQuery(t *testing.T) {
	sql, err := ExportDataQuery("SELECT 1;", ExportOptions{
		URI:         "gs://b/x/*.csv.gz",
		Compression: CompressionGzip,
		Header:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "EXPORT DATA OPTIONS (\n" +
		"  uri='gs://b/x/*.csv.gz',\n" +
		"  format='CSV',\n" +
		"  overwrite=true,\n" +
		"  field_delimiter=',',\n" +
		"  header=true,\n" +
		"  compression='GZIP'\n" +
		")\n" +
		"AS (\n" +
		"SELECT 1\n" +
		");"
	if sql != expected {
		t.Fatalf("unexpected statement:\n%s\nexpected:\n%s", sql, expected)
	}
}

func TestExportDataQueryURIExtension(t *testing.T) {
	tests := []struct {
		name string
		opts ExportOptions
	}{
		{name: "gzip without .gz", opts: ExportOptions{URI: "gs://b/*.csv", Compression: CompressionGzip}},
		{name: "plain without .csv", opts: ExportOptions{URI: "gs://b/*.txt"}},
		{name: "parquet without .parquet", opts: ExportOptions{URI: "gs://b/*.csv", Format: FormatParquet}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExportDataQuery("SELECT 1", tt.opts); !errors.Is(err, ErrInvalidURI) {
				t.Fatalf("expected ErrInvalidURI, got %v", err)
			}
		})
	}
}

func TestJoinStatements(t *testing.T) {
	got := JoinStatements("SELECT 1", "  ", "SELECT 2;\n")
	if got != "SELECT 1;\nSELECT 2;" {
		t.Fatalf("unexpected script %q", got)
	}
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns([]string{"id", "INT64", "tags", "ARRAY<STRING>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 || cols[1].Name != "tags" {
		t.Fatalf("unexpected columns %+v", cols)
	}

	if _, err := ParseColumns([]string{"id"}); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn for odd values, got %v", err)
	}
	if _, err := ParseColumns([]string{"1id", "INT64"}); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn for bad name, got %v", err)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: ",", expected: `','`},
		{input: "it's", expected: `'it\'s'`},
		{input: `\`, expected: `'\\'`},
		{input: `a\'b`, expected: `'a\\\'b'`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := quote(tt.input); got != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestExportDataQueryEscapesDelimiter(t *testing.T) {
	sql, err := ExportDataQuery("SELECT 1", ExportOptions{URI: "gs://b/p/*.csv", Delimiter: `\`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sql, `field_delimiter='\\'`) {
		t.Fatalf("expected an escaped backslash, got %s", sql)
	}
}
