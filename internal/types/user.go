// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"slices"
	"strings"
)

// User is a BI server account. Email is the caller-facing key, ID is server assigned.
type User struct {
	ID        int    `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`

	GroupIDs    []int      `json:"group_ids,omitempty"`
	Memberships []GroupRef `json:"user_group_memberships,omitempty"`
}

// Groups returns the ids of every group the user belongs to, regardless of
// which of the two payload shapes the server used.
func (u *User) Groups() []int {
	ids := slices.Clone(u.GroupIDs)
	for _, m := range u.Memberships {
		if !slices.Contains(ids, m.ID) {
			ids = append(ids, m.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// InGroup reports whether the user is a member of groupID.
func (u *User) InGroup(groupID int) bool {
	return slices.Contains(u.Groups(), groupID)
}

// NameFromEmail splits an email into placeholder first and last names:
// the local part and the domain.
func NameFromEmail(email string) (string, string) {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email, ""
	}
	return local, domain
}
