// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/canonical/utill/internal/types"
)

// ObjectRef identifies a question, dashboard or collection on the BI server.
type ObjectRef struct {
	Type types.ObjectType
	ID   int
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s %d", r.Type, r.ID)
}

// BasePath returns the path of the server url, "" when it is served from the root.
func BasePath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

// ParseObjectURL extracts the object reference from links such as
// https://bi.example.com/dashboard/12-sales-overview. basePath is the path the
// server is mounted on and is skipped. The next path segment names the type
// and the leading digits of the one after are the id.
func ParseObjectURL(raw, basePath string) (ObjectRef, error) {
	const op = "ParseObjectURL"

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ObjectRef{}, NewInvalidReferenceError(raw, op, err)
	}

	p := strings.Trim(u.Path, "/")
	if base := strings.Trim(basePath, "/"); base != "" {
		switch {
		case p == base:
			p = ""
		case strings.HasPrefix(p, base+"/"):
			p = strings.TrimPrefix(p, base+"/")
		}
	}

	segments := strings.Split(p, "/")
	if len(segments) < 2 {
		return ObjectRef{}, NewInvalidReferenceError(raw, op, errors.New("missing object id"))
	}

	objectType, ok := types.ParseObjectType(segments[0])
	if !ok {
		return ObjectRef{}, NewInvalidReferenceError(raw, op, fmt.Errorf("unknown object type %q", segments[0]))
	}

	idPart, _, _ := strings.Cut(segments[1], "-")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return ObjectRef{}, NewInvalidReferenceError(raw, op, fmt.Errorf("invalid object id %q", idPart))
	}

	return ObjectRef{Type: objectType, ID: id}, nil
}
