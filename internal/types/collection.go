// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
	"strconv"
	"strings"
)

type ObjectType string

const (
	ObjectTypeQuestion   ObjectType = "question"
	ObjectTypeDashboard  ObjectType = "dashboard"
	ObjectTypeCollection ObjectType = "collection"
)

// ParseObjectType converts a URL path token to an ObjectType.
func ParseObjectType(s string) (ObjectType, bool) {
	switch ObjectType(s) {
	case ObjectTypeQuestion, ObjectTypeDashboard, ObjectTypeCollection:
		return ObjectType(s), true
	default:
		return "", false
	}
}

// CollectionPermission is the access level a group holds on a collection.
type CollectionPermission string

const (
	PermissionNone  CollectionPermission = "none"
	PermissionRead  CollectionPermission = "read"
	PermissionWrite CollectionPermission = "write"
)

// Collection is a folder-like container. Location is the slash delimited
// ancestry of the collection, "/" for top level collections.
type Collection struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	PersonalOwnerID *int   `json:"personal_owner_id,omitempty"`
	Archived        bool   `json:"archived,omitempty"`
}

// Path returns the collection's full path, its location followed by its own id.
func (c *Collection) Path() CollectionPath {
	return CollectionPath(strings.TrimSuffix(c.Location, "/") + "/" + strconv.Itoa(c.ID))
}

// CollectionPath is a slash delimited sequence of collection ids from the root to a leaf,
// for example "/3/17/42". The last segment identifies the collection itself.
type CollectionPath string

// IDs parses the path segments. Empty segments are ignored.
func (p CollectionPath) IDs() ([]int, error) {
	ids := make([]int, 0)
	for _, seg := range strings.Split(strings.Trim(string(p), "/"), "/") {
		if seg == "" {
			continue
		}
		id, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("invalid collection path %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Question is a saved card. Collection is nil when the card lives in the root collection.
type Question struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	CollectionID *int        `json:"collection_id"`
	Collection   *Collection `json:"collection"`
	Archived     bool        `json:"archived,omitempty"`
}

type Dashboard struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	CollectionID *int        `json:"collection_id"`
	Collection   *Collection `json:"collection"`
}

// PermissionGraph is the revisioned collection permission graph, keyed by
// group id then collection id. Updates must carry the revision they were read at.
type PermissionGraph struct {
	Revision int                                        `json:"revision"`
	Groups   map[string]map[string]CollectionPermission `json:"groups"`
}

// Permission returns the level groupID holds on collectionID, PermissionNone when absent.
func (g PermissionGraph) Permission(groupID, collectionID int) CollectionPermission {
	perms, ok := g.Groups[strconv.Itoa(groupID)]
	if !ok {
		return PermissionNone
	}
	p, ok := perms[strconv.Itoa(collectionID)]
	if !ok || p == "" {
		return PermissionNone
	}
	return p
}
