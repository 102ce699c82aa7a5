// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabase

import (
	"context"
	"fmt"

	"github.com/canonical/utill/internal/types"
)

type userList struct {
	Data []types.User `json:"data"`
}

type createUserRequest struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	Memberships []types.GroupRef `json:"user_group_memberships"`
}

// ListUsers returns every user, active or not.
func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	var out userList
	if err := c.do(ctx, MethodGet, "api/user?status=all", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateUser(ctx context.Context, email, firstName, lastName string, groupIDs ...int) (*types.User, error) {
	req := createUserRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Memberships: make([]types.GroupRef, 0, len(groupIDs)),
	}
	for _, id := range groupIDs {
		req.Memberships = append(req.Memberships, types.GroupRef{ID: id})
	}

	user := new(types.User)
	if err := c.do(ctx, MethodPost, "api/user", req, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) ReactivateUser(ctx context.Context, userID int) error {
	return c.do(ctx, MethodPut, fmt.Sprintf("api/user/%d/reactivate", userID), nil, nil)
}

// DisableUser deactivates the account. The server keeps the user record.
func (c *Client) DisableUser(ctx context.Context, userID int) error {
	return c.do(ctx, MethodDelete, fmt.Sprintf("api/user/%d", userID), nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, MethodPost, "api/session/forgot_password", map[string]string{"email": email}, nil)
}
