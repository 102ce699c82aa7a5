// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

// AllUsersGroupID is the built-in group every BI server user belongs to.
const AllUsersGroupID = 1

// Group represents a permission group on the BI server.
type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count,omitempty"`
}

// Membership represents a user's membership in a group.
type Membership struct {
	ID      int `json:"membership_id,omitempty"`
	GroupID int `json:"group_id"`
	UserID  int `json:"user_id"`
}

// GroupRef is the shape used when a group is referenced from a user payload.
type GroupRef struct {
	ID int `json:"id"`
}
