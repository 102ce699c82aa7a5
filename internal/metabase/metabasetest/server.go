// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package metabasetest provides an in-memory BI server for tests.
package metabasetest

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/utill/internal/types"
)

const APIKey = "test-api-key"

type Server struct {
	*httptest.Server

	// OnGraphRead runs once a graph read has been snapshotted, before the
	// response is written. Use it to simulate a concurrent edit.
	OnGraphRead func()

	mu          sync.Mutex
	nextID      int
	users       map[int]*types.User
	groups      map[int]*types.Group
	collections map[int]*types.Collection
	questions   map[int]*types.Question
	dashboards  map[int]*types.Dashboard
	csv         map[int]string
	graph       types.PermissionGraph
	resets      []string
	calls       map[string]int
}

// NewServer starts a server seeded with the All Users and Administrators groups.
func NewServer() *Server {
	s := &Server{
		nextID:      100,
		users:       make(map[int]*types.User),
		groups:      make(map[int]*types.Group),
		collections: make(map[int]*types.Collection),
		questions:   make(map[int]*types.Question),
		dashboards:  make(map[int]*types.Dashboard),
		csv:         make(map[int]string),
		graph: types.PermissionGraph{
			Revision: 1,
			Groups:   make(map[string]map[string]types.CollectionPermission),
		},
		calls: make(map[string]int),
	}
	s.groups[types.AllUsersGroupID] = &types.Group{ID: types.AllUsersGroupID, Name: "All Users"}
	s.groups[2] = &types.Group{ID: 2, Name: "Administrators"}

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authenticate, s.count)

	r.Get("/api/user", s.listUsers)
	r.Post("/api/user", s.createUser)
	r.Put("/api/user/{id}/reactivate", s.reactivateUser)
	r.Delete("/api/user/{id}", s.disableUser)
	r.Post("/api/session/forgot_password", s.forgotPassword)

	r.Get("/api/permissions/group", s.listGroups)
	r.Post("/api/permissions/group", s.createGroup)
	r.Delete("/api/permissions/group/{id}", s.deleteGroup)
	r.Post("/api/permissions/membership", s.addMembership)

	r.Get("/api/card/{id}", s.getQuestion)
	r.Put("/api/card/{id}", s.updateQuestion)
	r.Post("/api/card/{id}/query/csv", s.questionCSV)
	r.Get("/api/dashboard/{id}", s.getDashboard)

	r.Get("/api/collection", s.listCollections)
	r.Get("/api/collection/graph", s.getGraph)
	r.Put("/api/collection/graph", s.putGraph)
	r.Get("/api/collection/{id}", s.getCollection)

	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != APIKey {
			http.Error(w, "Unauthenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		s.mu.Lock()
		s.calls[r.Method+" "+pattern]++
		s.mu.Unlock()
	})
}

// Calls returns how many requests matched "METHOD /route/{pattern}".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

func (s *Server) AddUser(email string, active bool, groupIDs ...int) types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, last := types.NameFromEmail(email)
	u := &types.User{
		ID:        s.id(),
		Email:     strings.ToLower(email),
		FirstName: first,
		LastName:  last,
		IsActive:  active,
		GroupIDs:  append([]int{types.AllUsersGroupID}, groupIDs...),
	}
	s.users[u.ID] = u
	return *u
}

func (s *Server) AddGroup(name string) types.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &types.Group{ID: s.id(), Name: name}
	s.groups[g.ID] = g
	return *g
}

// AddCollection creates a collection under parent, or at the top level when parent is nil.
func (s *Server) AddCollection(name string, parent *types.Collection) types.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	location := "/"
	if parent != nil {
		location = string(parent.Path()) + "/"
	}
	c := &types.Collection{ID: s.id(), Name: name, Location: location}
	s.collections[c.ID] = c
	return *c
}

func (s *Server) AddQuestion(name string, collection *types.Collection) types.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := &types.Question{ID: s.id(), Name: name}
	if collection != nil {
		q.CollectionID = &collection.ID
	}
	s.questions[q.ID] = q
	return *q
}

func (s *Server) AddDashboard(name string, collection *types.Collection) types.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &types.Dashboard{ID: s.id(), Name: name}
	if collection != nil {
		d.CollectionID = &collection.ID
	}
	s.dashboards[d.ID] = d
	return *d
}

func (s *Server) SetQuestionCSV(id int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csv[id] = body
}

func (s *Server) SetPermission(groupID, collectionID int, perm types.CollectionPermission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPermission(strconv.Itoa(groupID), strconv.Itoa(collectionID), perm)
}

func (s *Server) setPermission(gid, cid string, perm types.CollectionPermission) {
	if s.graph.Groups[gid] == nil {
		s.graph.Groups[gid] = make(map[string]types.CollectionPermission)
	}
	s.graph.Groups[gid][cid] = perm
}

// BumpGraphRevision simulates a concurrent permission edit.
func (s *Server) BumpGraphRevision() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Revision++
}

func (s *Server) Graph() types.PermissionGraph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyGraph()
}

func (s *Server) copyGraph() types.PermissionGraph {
	out := types.PermissionGraph{
		Revision: s.graph.Revision,
		Groups:   make(map[string]map[string]types.CollectionPermission, len(s.graph.Groups)),
	}
	for gid, perms := range s.graph.Groups {
		out.Groups[gid] = make(map[string]types.CollectionPermission, len(perms))
		for cid, p := range perms {
			out.Groups[gid][cid] = p
		}
	}
	return out
}

func (s *Server) Users() []types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listUsersLocked()
}

func (s *Server) listUsersLocked() []types.User {
	out := make([]types.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		c.GroupIDs = slices.Clone(u.GroupIDs)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b types.User) int { return a.ID - b.ID })
	return out
}

func (s *Server) UserByEmail(email string) (types.User, bool) {
	for _, u := range s.Users() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return types.User{}, false
}

func (s *Server) Groups() []types.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b types.Group) int { return a.ID - b.ID })
	return out
}

func (s *Server) GroupByName(name string) (types.Group, bool) {
	for _, g := range s.Groups() {
		if g.Name == name {
			return g, true
		}
	}
	return types.Group{}, false
}

func (s *Server) PasswordResets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.resets)
}

func (s *Server) Question(id int) (types.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return types.Question{}, false
	}
	return *q, true
}
