// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package bigquery

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTableFQN = errors.New("table name must be <project>.<dataset>.<table>")

// TableFQN is a fully qualified warehouse table name.
type TableFQN struct {
	Project string
	Dataset string
	Table   string
}

func (t TableFQN) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}

// Quoted returns the name ready to be embedded in SQL.
func (t TableFQN) Quoted() string {
	return "`" + t.String() + "`"
}

func ParseTableFQN(name string) (TableFQN, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(name), "`"), ".")
	if len(parts) != 3 {
		return TableFQN{}, fmt.Errorf("%w: %q", ErrInvalidTableFQN, name)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, "` \t\n") {
			return TableFQN{}, fmt.Errorf("%w: %q", ErrInvalidTableFQN, name)
		}
	}
	return TableFQN{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}
