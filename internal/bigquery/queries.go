// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

type Format string

const (
	FormatCSV     Format = "CSV"
	FormatParquet Format = "PARQUET"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "GZIP"
)

var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrInvalidURI    = errors.New("invalid export uri")
)

var (
	columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	scalarTypes = []string{
		"STRING", "BYTES", "INTEGER", "INT64", "FLOAT", "FLOAT64", "NUMERIC", "BIGNUMERIC",
		"DECIMAL", "BIGDECIMAL", "BOOL", "BOOLEAN", "DATE", "DATETIME", "TIME", "TIMESTAMP",
		"JSON", "GEOGRAPHY",
	}
)

// Column is a column of a load schema.
type Column struct {
	Name string
	Type string
}

func (c Column) validate() error {
	if !columnName.MatchString(c.Name) {
		return fmt.Errorf("%w: name %q", ErrInvalidColumn, c.Name)
	}
	t := strings.ToUpper(c.Type)
	if inner, ok := strings.CutPrefix(t, "ARRAY<"); ok && strings.HasSuffix(inner, ">") {
		t = strings.TrimSuffix(inner, ">")
	}
	if !slices.Contains(scalarTypes, t) {
		return fmt.Errorf("%w: %s has unsupported type %q", ErrInvalidColumn, c.Name, c.Type)
	}
	return nil
}

// LoadOptions describes a LOAD DATA statement.
type LoadOptions struct {
	Table       TableFQN
	URIs        []string
	Columns     []Column
	PartitionBy string
	ClusterBy   []string
	Overwrite   bool
	Format      Format
	Compression Compression
	Delimiter   string
}

// ExportOptions describes an EXPORT DATA statement.
type ExportOptions struct {
	URI         string
	Format      Format
	Compression Compression
	Header      bool
	Delimiter   string
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "'", `\'`)

// quote renders s as a single quoted string literal.
func quote(s string) string {
	return "'" + literalEscaper.Replace(s) + "'"
}

// LoadDataQuery renders a LOAD DATA INTO (or OVERWRITE) statement.
func LoadDataQuery(opts LoadOptions) (string, error) {
	if len(opts.URIs) == 0 {
		return "", errors.New("at least one source uri is required")
	}
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}

	var b strings.Builder
	mode := "INTO"
	if opts.Overwrite {
		mode = "OVERWRITE"
	}
	fmt.Fprintf(&b, "LOAD DATA %s %s", mode, opts.Table.Quoted())

	if len(opts.Columns) > 0 {
		cols := make([]string, 0, len(opts.Columns))
		for _, c := range opts.Columns {
			if err := c.validate(); err != nil {
				return "", err
			}
			cols = append(cols, fmt.Sprintf("  `%s` %s", c.Name, strings.ToUpper(c.Type)))
		}
		fmt.Fprintf(&b, " (\n%s\n)", strings.Join(cols, ",\n"))
	}
	b.WriteString("\n")

	if opts.PartitionBy != "" {
		fmt.Fprintf(&b, "PARTITION BY %s\n", opts.PartitionBy)
	}
	if len(opts.ClusterBy) > 0 {
		fields := make([]string, 0, len(opts.ClusterBy))
		for _, f := range opts.ClusterBy {
			fields = append(fields, "`"+f+"`")
		}
		fmt.Fprintf(&b, "CLUSTER BY %s\n", strings.Join(fields, ", "))
	}

	uris := make([]string, 0, len(opts.URIs))
	for _, u := range opts.URIs {
		uris = append(uris, quote(u))
	}
	options := []string{
		fmt.Sprintf("  format=%s", quote(string(opts.Format))),
		fmt.Sprintf("  uris=[%s]", strings.Join(uris, ", ")),
	}
	if opts.Format == FormatCSV {
		options = append(options,
			"  skip_leading_rows=1",
			fmt.Sprintf("  field_delimiter=%s", quote(opts.Delimiter)),
			"  allow_quoted_newlines=true",
		)
	}
	if opts.Compression != CompressionNone {
		options = append(options, fmt.Sprintf("  compression=%s", quote(string(opts.Compression))))
	}
	fmt.Fprintf(&b, "FROM FILES (\n%s\n)", strings.Join(options, ",\n"))

	return b.String(), nil
}

// ExportDataQuery wraps query in an EXPORT DATA statement writing to opts.URI.
// The uri extension must match the format and compression.
func ExportDataQuery(query string, opts ExportOptions) (string, error) {
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}

	switch {
	case opts.Format == FormatCSV && opts.Compression == CompressionGzip && !strings.HasSuffix(opts.URI, ".gz"):
		return "", fmt.Errorf("%w: %s must end with .gz for gzip compression", ErrInvalidURI, opts.URI)
	case opts.Format == FormatCSV && opts.Compression != CompressionGzip && !strings.HasSuffix(opts.URI, ".csv"):
		return "", fmt.Errorf("%w: %s must end with .csv", ErrInvalidURI, opts.URI)
	case opts.Format == FormatParquet && !strings.HasSuffix(opts.URI, ".parquet"):
		return "", fmt.Errorf("%w: %s must end with .parquet", ErrInvalidURI, opts.URI)
	}

	options := []string{
		fmt.Sprintf("  uri=%s", quote(opts.URI)),
		fmt.Sprintf("  format=%s", quote(string(opts.Format))),
		"  overwrite=true",
	}
	if opts.Format == FormatCSV {
		options = append(options, fmt.Sprintf("  field_delimiter=%s", quote(opts.Delimiter)))
		if opts.Header {
			options = append(options, "  header=true")
		}
	}
	if opts.Compression != CompressionNone {
		options = append(options, fmt.Sprintf("  compression=%s", quote(string(opts.Compression))))
	}

	return fmt.Sprintf("EXPORT DATA OPTIONS (\n%s\n)\nAS (\n%s\n);",
		strings.Join(options, ",\n"),
		strings.TrimSuffix(strings.TrimSpace(query), ";"),
	), nil
}

// JoinStatements turns several statements into one script.
func JoinStatements(queries ...string) string {
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if !strings.HasSuffix(q, ";") {
			q += ";"
		}
		out = append(out, q)
	}
	return strings.Join(out, "\n")
}

// ParseColumns builds a schema from alternating name and type values.
func ParseColumns(pairs []string) ([]Column, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: expected name and type pairs, got %d values", ErrInvalidColumn, len(pairs))
	}
	cols := make([]Column, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		c := Column{Name: pairs[i], Type: pairs[i+1]}
		if err := c.validate(); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}
