// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"strings"

	"github.com/canonical/utill/internal/types"
)

const groupNameSeparator = " > "

// NameResolver returns the display name of a collection.
type NameResolver func(ctx context.Context, collectionID int) (string, error)

// GroupName derives the access group name for a collection path by joining
// the display name of every collection on it, root first.
func GroupName(ctx context.Context, path types.CollectionPath, resolve NameResolver) (string, error) {
	ids, err := path.IDs()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", NewCollectionNotFoundError(0, "GroupName", nil)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := resolve(ctx, id)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	return strings.Join(names, groupNameSeparator), nil
}
