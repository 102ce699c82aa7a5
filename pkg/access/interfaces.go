// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"io"

	"github.com/canonical/utill/internal/types"
)

// MetabaseClientInterface is the subset of the BI server API the workflows use.
type MetabaseClientInterface interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	CreateUser(ctx context.Context, email, firstName, lastName string, groupIDs ...int) (*types.User, error)
	ReactivateUser(ctx context.Context, userID int) error
	DisableUser(ctx context.Context, userID int) error
	ResetPassword(ctx context.Context, email string) error

	ListGroups(ctx context.Context) ([]types.Group, error)
	CreateGroup(ctx context.Context, name string) (*types.Group, error)
	DeleteGroup(ctx context.Context, groupID int) error
	AddMembership(ctx context.Context, groupID, userID int) error

	GetQuestion(ctx context.Context, id int) (*types.Question, error)
	GetDashboard(ctx context.Context, id int) (*types.Dashboard, error)
	GetCollection(ctx context.Context, id int) (*types.Collection, error)
	ListCollections(ctx context.Context) ([]types.Collection, error)
	GetCollectionGraph(ctx context.Context) (*types.PermissionGraph, error)
	UpdateCollectionGraph(ctx context.Context, graph *types.PermissionGraph) (*types.PermissionGraph, error)

	DownloadQuestion(ctx context.Context, id int, w io.Writer) (int64, error)
	ArchiveQuestion(ctx context.Context, id int) error
}

type ServiceInterface interface {
	GrantAccess(ctx context.Context, objectURL string, emails []string, createUserIfNotExists bool) error
	MirrorPermissions(ctx context.Context, sourceEmail string, targetEmails []string) error
	ResetPassword(ctx context.Context, emails []string) error
	DisableUsers(ctx context.Context, emails []string) error
	DeleteGroup(ctx context.Context, name string) error
	DownloadQuestion(ctx context.Context, questionURL string, w io.Writer) (int64, error)
	ArchiveQuestion(ctx context.Context, questionURL string) error
}
