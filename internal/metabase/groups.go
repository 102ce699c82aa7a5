// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabase

import (
	"context"
	"fmt"

	"github.com/canonical/utill/internal/types"
)

func (c *Client) ListGroups(ctx context.Context) ([]types.Group, error) {
	groups := make([]types.Group, 0)
	if err := c.do(ctx, MethodGet, "api/permissions/group", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) CreateGroup(ctx context.Context, name string) (*types.Group, error) {
	group := new(types.Group)
	if err := c.do(ctx, MethodPost, "api/permissions/group", map[string]string{"name": name}, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (c *Client) DeleteGroup(ctx context.Context, groupID int) error {
	return c.do(ctx, MethodDelete, fmt.Sprintf("api/permissions/group/%d", groupID), nil, nil)
}

func (c *Client) AddMembership(ctx context.Context, groupID, userID int) error {
	return c.do(ctx, MethodPost, "api/permissions/membership", types.Membership{GroupID: groupID, UserID: userID}, nil)
}
