// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/lookup"
	"github.com/canonical/utill/internal/metabase"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
	"github.com/canonical/utill/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	client   MetabaseClientInterface
	basePath string

	users       *lookup.Snapshot[string, types.User]
	groups      *lookup.Snapshot[string, types.Group]
	collections *lookup.Snapshot[int, types.Collection]
	validate    *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// GrantAccess gives every email read access to the collection owning the
// object behind objectURL, through a group named after the collection path.
// Re-running it with the same input is a no-op. Steps already applied are not
// rolled back when a later one fails.
func (s *Service) GrantAccess(ctx context.Context, objectURL string, emails []string, createUserIfNotExists bool) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.GrantAccess")
	defer span.End()

	const op = "GrantAccess"

	ref, err := ParseObjectURL(objectURL, s.basePath)
	if err != nil {
		return err
	}
	emails, err = s.normalizeEmails(emails, op)
	if err != nil {
		return err
	}

	s.logger.Infof("Getting %s information", ref)
	collection, err := s.owningCollection(ctx, ref)
	if err != nil {
		return err
	}
	path := collection.Path()
	s.logger.Infof("Object found: %s, collection %d at %s", ref, collection.ID, path)

	groupName, err := GroupName(ctx, path, s.collectionName)
	if err != nil {
		return err
	}

	group, err := s.ensureGroup(ctx, groupName, collection.ID)
	if err != nil {
		return err
	}
	s.logger.Infof("Group found: [%d] %s", group.ID, group.Name)

	if err := s.ensureUsers(ctx, emails, createUserIfNotExists, op); err != nil {
		return err
	}

	pending := make([]types.User, 0, len(emails))
	reactivated := false
	for _, email := range emails {
		user, err := s.users.Get(ctx, email)
		if err != nil {
			if errors.Is(err, lookup.ErrNotFound) {
				return NewUsersNotFoundError([]string{email}, op)
			}
			return err
		}

		if !user.IsActive && createUserIfNotExists {
			s.logger.Infof("Reactivating user [%d] %s", user.ID, user.Email)
			if err := s.client.ReactivateUser(ctx, user.ID); err != nil {
				return fmt.Errorf("failed to reactivate user %s: %w", user.Email, err)
			}
			reactivated = true
		}

		if user.InGroup(group.ID) {
			s.logger.Infof("User [%d] %s already in group %d, skipping", user.ID, user.Email, group.ID)
			continue
		}
		pending = append(pending, user)
	}
	if reactivated {
		s.users.Invalidate()
	}

	if len(pending) == 0 {
		s.logger.Info("No users to grant")
		return nil
	}

	labels := make([]string, 0, len(pending))
	for _, u := range pending {
		labels = append(labels, fmt.Sprintf("[%d] %s", u.ID, u.Email))
	}
	s.logger.Infof("Users to be granted: %s", strings.Join(labels, ", "))

	// Memberships change the directory, drop it even on partial failure.
	defer s.users.Invalidate()

	for _, u := range pending {
		s.logger.Infof("Assigning user [%d] %s to group [%d] %s", u.ID, u.Email, group.ID, group.Name)
		if err := s.client.AddMembership(ctx, group.ID, u.ID); err != nil {
			return fmt.Errorf("failed to add user %s to group %q: %w", u.Email, group.Name, err)
		}
	}
	s.logger.Infof("All users assigned to group %s", group.Name)

	return nil
}

// normalizeEmail lowercases an address the way Metabase stores it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) normalizeEmails(emails []string, op string) ([]string, error) {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = normalizeEmail(e)
		if err := s.validate.Var(e, "required,email"); err != nil {
			return nil, NewValidationError("email", fmt.Sprintf("%q is not a valid address", e), op)
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, NewValidationError("emails", "at least one email is required", op)
	}
	return out, nil
}

func (s *Service) owningCollection(ctx context.Context, ref ObjectRef) (*types.Collection, error) {
	const op = "ResolveCollection"

	switch ref.Type {
	case types.ObjectTypeQuestion:
		q, err := s.client.GetQuestion(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get question %d: %w", ref.ID, err)
		}
		if q.Collection == nil {
			return nil, NewCollectionNotFoundError(0, op, nil)
		}
		return q.Collection, nil
	case types.ObjectTypeDashboard:
		d, err := s.client.GetDashboard(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get dashboard %d: %w", ref.ID, err)
		}
		if d.Collection == nil {
			return nil, NewCollectionNotFoundError(0, op, nil)
		}
		return d.Collection, nil
	case types.ObjectTypeCollection:
		c, err := s.client.GetCollection(ctx, ref.ID)
		if err != nil {
			if isNotFound(err) {
				return nil, NewCollectionNotFoundError(ref.ID, op, err)
			}
			return nil, fmt.Errorf("failed to get collection %d: %w", ref.ID, err)
		}
		return c, nil
	default:
		return nil, NewInvalidReferenceError(ref.String(), op, nil)
	}
}

// collectionName resolves a display name from the collection listing, falling
// back to a direct lookup for collections the listing does not include.
func (s *Service) collectionName(ctx context.Context, id int) (string, error) {
	c, err := s.collections.Get(ctx, id)
	if err == nil {
		return c.Name, nil
	}
	if !errors.Is(err, lookup.ErrNotFound) {
		return "", err
	}

	s.logger.Debugf("Collection %d not in listing, fetching it", id)
	col, err := s.client.GetCollection(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return "", NewCollectionNotFoundError(id, "GroupName", err)
		}
		return "", fmt.Errorf("failed to get collection %d: %w", id, err)
	}
	return col.Name, nil
}

func (s *Service) ensureGroup(ctx context.Context, name string, collectionID int) (types.Group, error) {
	group, err := s.groups.Get(ctx, name)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, lookup.ErrNotFound) {
		return types.Group{}, err
	}

	created, err := s.client.CreateGroup(ctx, name)
	if err != nil {
		return types.Group{}, fmt.Errorf("failed to create group %q: %w", name, err)
	}
	s.groups.Invalidate()
	s.logger.Infof("Created group [%d] %s", created.ID, created.Name)

	if err := s.grantRead(ctx, created.ID, collectionID); err != nil {
		return types.Group{}, err
	}
	return *created, nil
}

// grantRead gives groupID read access to collectionID. The graph is read right
// before the update so the submitted revision is the current one; a conflict
// is returned to the caller as is.
func (s *Service) grantRead(ctx context.Context, groupID, collectionID int) error {
	graph, err := s.client.GetCollectionGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collection graph: %w", err)
	}
	s.logger.Debugf("Latest collection graph revision: %d", graph.Revision)

	if current := graph.Permission(groupID, collectionID); current != types.PermissionNone {
		s.logger.Warnf("Group %d already has %s access to collection %d", groupID, current, collectionID)
		return nil
	}

	update := &types.PermissionGraph{
		Revision: graph.Revision,
		Groups: map[string]map[string]types.CollectionPermission{
			fmt.Sprint(groupID): {fmt.Sprint(collectionID): types.PermissionRead},
		},
	}
	if _, err := s.client.UpdateCollectionGraph(ctx, update); err != nil {
		return fmt.Errorf("failed to grant group %d read access to collection %d at revision %d: %w", groupID, collectionID, graph.Revision, err)
	}
	s.logger.Infof("Granted group %d read access to collection %d", groupID, collectionID)
	return nil
}

// ensureUsers creates missing users when allowed, otherwise fails listing
// every missing email before anything is changed.
func (s *Service) ensureUsers(ctx context.Context, emails []string, create bool, op string) error {
	s.logger.Infof("Getting information from %d users", len(emails))

	missing := make([]string, 0)
	created := 0
	for _, email := range emails {
		_, err := s.users.Get(ctx, email)
		if err == nil {
			continue
		}
		if !errors.Is(err, lookup.ErrNotFound) {
			return err
		}

		if !create {
			missing = append(missing, email)
			continue
		}

		first, last := types.NameFromEmail(email)
		s.logger.Infof("Creating user %s", email)
		if _, err := s.client.CreateUser(ctx, email, first, last, types.AllUsersGroupID); err != nil {
			return fmt.Errorf("failed to create user %s: %w", email, err)
		}
		created++
	}

	if len(missing) > 0 {
		return NewUsersNotFoundError(missing, op)
	}

	if created > 0 {
		s.logger.Infof("%d users created, re-fetching all users", created)
		if err := s.users.Refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}

// lookupUsers resolves every email or fails listing all unknown ones.
func (s *Service) lookupUsers(ctx context.Context, emails []string, op string) ([]types.User, error) {
	users := make([]types.User, 0, len(emails))
	missing := make([]string, 0)
	for _, email := range emails {
		u, err := s.users.Get(ctx, email)
		if err != nil {
			if errors.Is(err, lookup.ErrNotFound) {
				missing = append(missing, email)
				continue
			}
			return nil, err
		}
		users = append(users, u)
	}
	if len(missing) > 0 {
		return nil, NewUsersNotFoundError(missing, op)
	}
	return users, nil
}

// MirrorPermissions adds every target user to each group the source user
// belongs to, All Users excepted.
func (s *Service) MirrorPermissions(ctx context.Context, sourceEmail string, targetEmails []string) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.MirrorPermissions")
	defer span.End()

	const op = "MirrorPermissions"

	sources, err := s.normalizeEmails([]string{sourceEmail}, op)
	if err != nil {
		return err
	}
	targetEmails, err = s.normalizeEmails(targetEmails, op)
	if err != nil {
		return err
	}

	users, err := s.lookupUsers(ctx, append(sources, targetEmails...), op)
	if err != nil {
		return err
	}
	source, targets := users[0], users[1:]

	defer s.users.Invalidate()

	for _, target := range targets {
		if target.Email == source.Email {
			continue
		}
		granted := 0
		for _, groupID := range source.Groups() {
			if groupID == types.AllUsersGroupID || target.InGroup(groupID) {
				continue
			}
			if err := s.client.AddMembership(ctx, groupID, target.ID); err != nil {
				return fmt.Errorf("failed to add user %s to group %d: %w", target.Email, groupID, err)
			}
			granted++
		}
		s.logger.Infof("Mirrored %d groups from %s to %s", granted, source.Email, target.Email)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, emails []string) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.ResetPassword")
	defer span.End()

	const op = "ResetPassword"

	emails, err := s.normalizeEmails(emails, op)
	if err != nil {
		return err
	}
	if _, err := s.lookupUsers(ctx, emails, op); err != nil {
		return err
	}

	for _, email := range emails {
		if err := s.client.ResetPassword(ctx, email); err != nil {
			return fmt.Errorf("failed to reset password for %s: %w", email, err)
		}
		s.logger.Infof("Reset password %s", email)
	}
	return nil
}

func (s *Service) DisableUsers(ctx context.Context, emails []string) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.DisableUsers")
	defer span.End()

	const op = "DisableUsers"

	emails, err := s.normalizeEmails(emails, op)
	if err != nil {
		return err
	}
	users, err := s.lookupUsers(ctx, emails, op)
	if err != nil {
		return err
	}

	defer s.users.Invalidate()

	for _, u := range users {
		if err := s.client.DisableUser(ctx, u.ID); err != nil {
			return fmt.Errorf("failed to disable user %s: %w", u.Email, err)
		}
		s.logger.Infof("Deactivated user [%d] %s", u.ID, u.Email)
	}
	return nil
}

func (s *Service) DeleteGroup(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.DeleteGroup")
	defer span.End()

	group, err := s.groups.Get(ctx, name)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return NewGroupNotFoundError(name, "DeleteGroup")
		}
		return err
	}
	if group.ID == types.AllUsersGroupID {
		return NewValidationError("group", "the All Users group cannot be deleted", "DeleteGroup")
	}

	if err := s.client.DeleteGroup(ctx, group.ID); err != nil {
		return fmt.Errorf("failed to delete group %q: %w", name, err)
	}
	s.groups.Invalidate()
	s.users.Invalidate()
	s.logger.Infof("Deleted group [%d] %s", group.ID, group.Name)
	return nil
}

func (s *Service) questionRef(questionURL, op string) (ObjectRef, error) {
	ref, err := ParseObjectURL(questionURL, s.basePath)
	if err != nil {
		return ObjectRef{}, err
	}
	if ref.Type != types.ObjectTypeQuestion {
		return ObjectRef{}, NewInvalidReferenceError(questionURL, op, fmt.Errorf("expected a question, got a %s", ref.Type))
	}
	return ref, nil
}

// DownloadQuestion writes the CSV result of the saved question to w.
func (s *Service) DownloadQuestion(ctx context.Context, questionURL string, w io.Writer) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "access.Service.DownloadQuestion")
	defer span.End()

	ref, err := s.questionRef(questionURL, "DownloadQuestion")
	if err != nil {
		return 0, err
	}

	n, err := s.client.DownloadQuestion(ctx, ref.ID, w)
	if err != nil {
		return n, fmt.Errorf("failed to download question %d: %w", ref.ID, err)
	}
	return n, nil
}

func (s *Service) ArchiveQuestion(ctx context.Context, questionURL string) error {
	ctx, span := s.tracer.Start(ctx, "access.Service.ArchiveQuestion")
	defer span.End()

	ref, err := s.questionRef(questionURL, "ArchiveQuestion")
	if err != nil {
		return err
	}

	if err := s.client.ArchiveQuestion(ctx, ref.ID); err != nil {
		return fmt.Errorf("failed to archive question %d: %w", ref.ID, err)
	}
	s.logger.Infof("Archived question %s", questionURL)
	return nil
}

func isNotFound(err error) bool {
	var re *metabase.RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

func NewService(
	client MetabaseClientInterface,
	baseURL string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.client = client
	s.basePath = BasePath(baseURL)
	s.validate = validator.New(validator.WithRequiredStructEnabled())

	s.users = lookup.New("users", client.ListUsers, func(u types.User) string { return normalizeEmail(u.Email) })
	s.groups = lookup.New("groups", client.ListGroups, func(g types.Group) string { return g.Name })
	s.collections = lookup.New("collections", client.ListCollections, func(c types.Collection) int { return c.ID })

	s.monitor = monitor
	s.tracer = tracer
	s.logger = logger

	return s
}
