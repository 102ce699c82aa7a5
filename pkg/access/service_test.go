// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/metabase"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
	"github.com/canonical/utill/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_metabase.go -source=./interfaces.go

const (
	questionURL = "https://bi.example.com/question/7-quarterly-revenue"
	groupName   = "Finance > Reports > Q3"
)

func intPtr(i int) *int { return &i }

func fixtureCollections() []types.Collection {
	return []types.Collection{
		{ID: 3, Name: "Finance", Location: "/"},
		{ID: 17, Name: "Reports", Location: "/3/"},
		{ID: 42, Name: "Q3", Location: "/3/17/"},
	}
}

func fixtureQuestion() *types.Question {
	return &types.Question{
		ID:           7,
		Name:         "Quarterly revenue",
		CollectionID: intPtr(42),
		Collection:   &types.Collection{ID: 42, Name: "Q3", Location: "/3/17/"},
	}
}

func newTestService(client MetabaseClientInterface) *Service {
	return NewService(client, "https://bi.example.com", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("utill"), logging.NewNoopLogger())
}

func TestGrantAccess(t *testing.T) {
	existingGroup := types.Group{ID: 55, Name: groupName}

	tests := []struct {
		name       string
		url        string
		emails     []string
		create     bool
		setupMocks func(*MockMetabaseClientInterface)
		expectErr  error
		check      func(*testing.T, error)
	}{
		{
			name:       "unknown object type",
			url:        "https://bi.example.com/model/7-x",
			emails:     []string{"a@x.com"},
			setupMocks: func(*MockMetabaseClientInterface) {},
			expectErr:  ErrInvalidReference,
		},
		{
			name:       "no emails",
			url:        questionURL,
			emails:     nil,
			setupMocks: func(*MockMetabaseClientInterface) {},
			expectErr:  ErrValidation,
		},
		{
			name:       "malformed email",
			url:        questionURL,
			emails:     []string{"not-an-email"},
			setupMocks: func(*MockMetabaseClientInterface) {},
			expectErr:  ErrValidation,
		},
		{
			name:   "question in root collection",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(&types.Question{ID: 7}, nil)
			},
			expectErr: ErrCollectionNotFound,
		},
		{
			name:   "unknown ancestor collection",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections()[1:], nil)
				c.EXPECT().GetCollection(gomock.Any(), 3).Return(nil, &metabase.RemoteError{StatusCode: 404})
			},
			expectErr: ErrCollectionNotFound,
		},
		{
			name:   "existing group skips creation and only grants missing members",
			url:    questionURL,
			emails: []string{"a@x.com", "b@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{{ID: 1, Name: "All Users"}, existingGroup}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1, 55}},
					{ID: 11, Email: "b@x.com", IsActive: true, GroupIDs: []int{1}},
				}, nil)
				c.EXPECT().AddMembership(gomock.Any(), 55, 11).Return(nil)
			},
		},
		{
			name:   "new group is created and granted read at the current revision",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{{ID: 1, Name: "All Users"}}, nil)

				createGroup := c.EXPECT().CreateGroup(gomock.Any(), groupName).Return(&types.Group{ID: 56, Name: groupName}, nil)
				readGraph := c.EXPECT().GetCollectionGraph(gomock.Any()).Return(&types.PermissionGraph{
					Revision: 9,
					Groups: map[string]map[string]types.CollectionPermission{
						"56": {"42": types.PermissionNone, "3": types.PermissionWrite},
					},
				}, nil).After(createGroup)
				c.EXPECT().UpdateCollectionGraph(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, g *types.PermissionGraph) (*types.PermissionGraph, error) {
						want := &types.PermissionGraph{
							Revision: 9,
							Groups: map[string]map[string]types.CollectionPermission{
								"56": {"42": types.PermissionRead},
							},
						}
						if !reflect.DeepEqual(g, want) {
							t.Errorf("unexpected graph update %+v", g)
						}
						return &types.PermissionGraph{Revision: 10}, nil
					},
				).After(readGraph)

				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1}},
				}, nil)
				c.EXPECT().AddMembership(gomock.Any(), 56, 10).Return(nil)
			},
		},
		{
			name:   "existing read access skips graph update",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return(nil, nil)
				c.EXPECT().CreateGroup(gomock.Any(), groupName).Return(&types.Group{ID: 56, Name: groupName}, nil)
				c.EXPECT().GetCollectionGraph(gomock.Any()).Return(&types.PermissionGraph{
					Revision: 9,
					Groups:   map[string]map[string]types.CollectionPermission{"56": {"42": types.PermissionRead}},
				}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1, 56}},
				}, nil)
			},
		},
		{
			name:   "stale revision fails without retry",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return(nil, nil)
				c.EXPECT().CreateGroup(gomock.Any(), groupName).Return(&types.Group{ID: 56, Name: groupName}, nil)
				c.EXPECT().GetCollectionGraph(gomock.Any()).Return(&types.PermissionGraph{Revision: 9}, nil).Times(1)
				c.EXPECT().UpdateCollectionGraph(gomock.Any(), gomock.Any()).Return(nil, &metabase.RemoteError{
					Method:     metabase.MethodPut,
					Endpoint:   "api/collection/graph",
					StatusCode: 409,
				}).Times(1)
			},
			expectErr: metabase.ErrRemoteCallFailed,
		},
		{
			name:   "missing users are all reported before any membership change",
			url:    questionURL,
			emails: []string{"a@x.com", "b@x.com", "c@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{existingGroup}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1}},
				}, nil)
			},
			check: func(t *testing.T, err error) {
				var ae *AccessError
				if !errors.As(err, &ae) || ae.Code != ErrCodeUsersNotFound {
					t.Fatalf("expected users not found error, got %v", err)
				}
				if got := ae.Emails(); !reflect.DeepEqual(got, []string{"b@x.com", "c@x.com"}) {
					t.Fatalf("unexpected missing emails %v", got)
				}
			},
		},
		{
			name:   "missing users are created and the directory refreshed",
			url:    questionURL,
			emails: []string{"a@x.com", "b@x.com"},
			create: true,
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{existingGroup}, nil)

				first := c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1}},
				}, nil)
				create := c.EXPECT().CreateUser(gomock.Any(), "b@x.com", "b", "x.com", types.AllUsersGroupID).
					Return(&types.User{ID: 11, Email: "b@x.com"}, nil).After(first)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1}},
					{ID: 11, Email: "b@x.com", IsActive: true, Memberships: []types.GroupRef{{ID: 1}}},
				}, nil).After(create)

				c.EXPECT().AddMembership(gomock.Any(), 55, 10).Return(nil)
				c.EXPECT().AddMembership(gomock.Any(), 55, 11).Return(nil)
			},
		},
		{
			name:   "inactive users are reactivated when provisioning",
			url:    "https://bi.example.com/collection/42-q3",
			emails: []string{"a@x.com"},
			create: true,
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetCollection(gomock.Any(), 42).Return(&types.Collection{ID: 42, Name: "Q3", Location: "/3/17/"}, nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{existingGroup}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: false, GroupIDs: []int{1}},
				}, nil)
				c.EXPECT().ReactivateUser(gomock.Any(), 10).Return(nil)
				c.EXPECT().AddMembership(gomock.Any(), 55, 10).Return(nil)
			},
		},
		{
			name:   "inactive users are left alone without provisioning",
			url:    "https://bi.example.com/dashboard/5-overview",
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetDashboard(gomock.Any(), 5).Return(&types.Dashboard{
					ID:         5,
					Collection: &types.Collection{ID: 42, Name: "Q3", Location: "/3/17/"},
				}, nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{existingGroup}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: false, GroupIDs: []int{1}},
				}, nil)
				c.EXPECT().AddMembership(gomock.Any(), 55, 10).Return(nil)
			},
		},
		{
			name:   "membership failure aborts",
			url:    questionURL,
			emails: []string{"a@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().GetQuestion(gomock.Any(), 7).Return(fixtureQuestion(), nil)
				c.EXPECT().ListCollections(gomock.Any()).Return(fixtureCollections(), nil)
				c.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{existingGroup}, nil)
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
					{ID: 10, Email: "a@x.com", IsActive: true, GroupIDs: []int{1}},
				}, nil)
				c.EXPECT().AddMembership(gomock.Any(), 55, 10).Return(&metabase.RemoteError{StatusCode: 500})
			},
			expectErr: metabase.ErrRemoteCallFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := NewMockMetabaseClientInterface(ctrl)
			tt.setupMocks(client)

			err := newTestService(client).GrantAccess(context.Background(), tt.url, tt.emails, tt.create)

			switch {
			case tt.check != nil:
				tt.check(t, err)
			case tt.expectErr != nil:
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGroupNameIsDeterministic(t *testing.T) {
	names := map[int]string{3: "Finance", 17: "Reports", 42: "Q3"}
	calls := 0
	resolve := func(_ context.Context, id int) (string, error) {
		calls++
		name, ok := names[id]
		if !ok {
			return "", NewCollectionNotFoundError(id, "test", nil)
		}
		return name, nil
	}

	for range 3 {
		got, err := GroupName(context.Background(), "/3/17/42", resolve)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != groupName {
			t.Fatalf("expected %q, got %q", groupName, got)
		}
	}
	if calls != 9 {
		t.Fatalf("expected one resolution per segment, got %d", calls)
	}

	if _, err := GroupName(context.Background(), "/3/99/42", resolve); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected collection not found, got %v", err)
	}
	if _, err := GroupName(context.Background(), "/", resolve); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected collection not found for empty path, got %v", err)
	}
}

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		url       string
		basePath  string
		want      ObjectRef
		expectErr bool
	}{
		{url: "https://bi.example.com/question/7-quarterly-revenue", want: ObjectRef{types.ObjectTypeQuestion, 7}},
		{url: "https://bi.example.com/dashboard/12", want: ObjectRef{types.ObjectTypeDashboard, 12}},
		{url: "https://bi.example.com/collection/42-q3?tab=1", want: ObjectRef{types.ObjectTypeCollection, 42}},
		{url: "https://bi.example.com/model/7-x", expectErr: true},
		{url: "https://bi.example.com/question/", expectErr: true},
		{url: "https://bi.example.com/question/abc-x", expectErr: true},
		{url: "https://bi.example.com/question/-7", expectErr: true},
		{url: "https://bi.example.com", expectErr: true},
		{url: "https://bi.example.com/metabase/question/12-x", basePath: "/metabase/", want: ObjectRef{types.ObjectTypeQuestion, 12}},
		{url: "https://bi.example.com/bi/tools/dashboard/5", basePath: "bi/tools", want: ObjectRef{types.ObjectTypeDashboard, 5}},
		{url: "https://bi.example.com/question/12-x", basePath: "metabase", want: ObjectRef{types.ObjectTypeQuestion, 12}},
		{url: "https://bi.example.com/metabase/question/12-x", expectErr: true},
		{url: "https://bi.example.com/metabase", basePath: "metabase", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseObjectURL(tt.url, tt.basePath)
			if tt.expectErr {
				if !errors.Is(err, ErrInvalidReference) {
					t.Fatalf("expected invalid reference, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestMirrorPermissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().ListUsers(gomock.Any()).Return([]types.User{
		{ID: 10, Email: "src@x.com", GroupIDs: []int{1, 5, 6}},
		{ID: 11, Email: "dst@x.com", GroupIDs: []int{1, 6}},
		{ID: 12, Email: "new@x.com", Memberships: []types.GroupRef{{ID: 1}}},
	}, nil)
	client.EXPECT().AddMembership(gomock.Any(), 5, 11).Return(nil)
	client.EXPECT().AddMembership(gomock.Any(), 5, 12).Return(nil)
	client.EXPECT().AddMembership(gomock.Any(), 6, 12).Return(nil)

	err := newTestService(client).MirrorPermissions(context.Background(), "src@x.com", []string{"dst@x.com", "new@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMirrorPermissionsUnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().ListUsers(gomock.Any()).Return([]types.User{{ID: 10, Email: "src@x.com"}}, nil)

	err := newTestService(client).MirrorPermissions(context.Background(), "src@x.com", []string{"ghost@x.com"})
	if !errors.Is(err, ErrUsersNotFound) {
		t.Fatalf("expected users not found, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name       string
		emails     []string
		setupMocks func(*MockMetabaseClientInterface)
		expectErr  error
	}{
		{
			name:   "known users",
			emails: []string{"a@x.com", "b@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{{ID: 1, Email: "a@x.com"}, {ID: 2, Email: "b@x.com"}}, nil)
				c.EXPECT().ResetPassword(gomock.Any(), "a@x.com").Return(nil)
				c.EXPECT().ResetPassword(gomock.Any(), "b@x.com").Return(nil)
			},
		},
		{
			name:   "unknown user fails before any reset",
			emails: []string{"a@x.com", "ghost@x.com"},
			setupMocks: func(c *MockMetabaseClientInterface) {
				c.EXPECT().ListUsers(gomock.Any()).Return([]types.User{{ID: 1, Email: "a@x.com"}}, nil)
			},
			expectErr: ErrUsersNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := NewMockMetabaseClientInterface(ctrl)
			tt.setupMocks(client)

			err := newTestService(client).ResetPassword(context.Background(), tt.emails)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDisableUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().ListUsers(gomock.Any()).Return([]types.User{{ID: 1, Email: "a@x.com", IsActive: true}}, nil).Times(2)
	client.EXPECT().DisableUser(gomock.Any(), 1).Return(nil)

	s := newTestService(client)
	if err := s.DisableUsers(context.Background(), []string{"a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The directory is reloaded after a change.
	if _, err := s.users.Get(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{{ID: 1, Name: "All Users"}, {ID: 55, Name: groupName}}, nil)
	client.EXPECT().DeleteGroup(gomock.Any(), 55).Return(nil)

	s := newTestService(client)
	if err := s.DeleteGroup(context.Background(), groupName); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.EXPECT().ListGroups(gomock.Any()).Return([]types.Group{{ID: 1, Name: "All Users"}}, nil)
	if err := s.DeleteGroup(context.Background(), groupName); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected group not found, got %v", err)
	}
	if err := s.DeleteGroup(context.Background(), "All Users"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuestionOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().DownloadQuestion(gomock.Any(), 7, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int, w io.Writer) (int64, error) {
			n, err := io.WriteString(w, "a,b\n1,2\n")
			return int64(n), err
		},
	)
	client.EXPECT().ArchiveQuestion(gomock.Any(), 7).Return(nil)

	s := newTestService(client)

	var buf bytes.Buffer
	if _, err := s.DownloadQuestion(context.Background(), questionURL, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "a,b\n1,2\n" {
		t.Fatalf("unexpected body %q", buf.String())
	}

	if err := s.ArchiveQuestion(context.Background(), questionURL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.ArchiveQuestion(context.Background(), "https://bi.example.com/dashboard/5"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected invalid reference for dashboard, got %v", err)
	}
}

func TestBasePath(t *testing.T) {
	for raw, want := range map[string]string{
		"https://bi.example.com":            "",
		"https://bi.example.com/":           "",
		"https://bi.example.com/metabase/":  "metabase",
		"https://bi.example.com/a/metabase": "a/metabase",
	} {
		if got := BasePath(raw); got != want {
			t.Errorf("BasePath(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestArchiveQuestionUnderSubPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockMetabaseClientInterface(ctrl)
	client.EXPECT().ArchiveQuestion(gomock.Any(), 12).Return(nil)

	s := NewService(client, "https://bi.example.com/metabase", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("utill"), logging.NewNoopLogger())

	if err := s.ArchiveQuestion(context.Background(), "https://bi.example.com/metabase/question/12-old-report"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
