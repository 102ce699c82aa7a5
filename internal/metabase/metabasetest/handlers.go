// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabasetest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/utill/internal/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := s.listUsersLocked()
	s.mu.Unlock()

	if r.URL.Query().Get("status") != "all" {
		users = slices.DeleteFunc(users, func(u types.User) bool { return !u.IsActive })
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": users, "total": len(users)})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName   string           `json:"first_name"`
		LastName    string           `json:"last_name"`
		Email       string           `json:"email"`
		Memberships []types.GroupRef `json:"user_group_memberships"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid user payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string]string{"email": "Email address already in use."}})
			return
		}
	}

	u := &types.User{
		ID:        s.id(),
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	for _, m := range req.Memberships {
		if !slices.Contains(u.GroupIDs, m.ID) {
			u.GroupIDs = append(u.GroupIDs, m.ID)
		}
	}
	s.users[u.ID] = u
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) reactivateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	if u.IsActive {
		http.Error(w, "Not able to reactivate an active user", http.StatusBadRequest)
		return
	}
	u.IsActive = true
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) disableUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	u.IsActive = false
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.resets = append(s.resets, req.Email)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listGroups(w http.ResponseWriter, _ *http.Request) {
	groups := s.Groups()

	s.mu.Lock()
	for i := range groups {
		for _, u := range s.users {
			if slices.Contains(u.GroupIDs, groups[i].ID) {
				groups[i].MemberCount++
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid group payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Name == req.Name {
			http.Error(w, "A group with that name already exists.", http.StatusBadRequest)
			return
		}
	}
	g := &types.Group{ID: s.id(), Name: req.Name}
	s.groups[g.ID] = g
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok || id == types.AllUsersGroupID {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	delete(s.groups, id)
	delete(s.graph.Groups, strconv.Itoa(id))
	for _, u := range s.users {
		u.GroupIDs = slices.DeleteFunc(u.GroupIDs, func(g int) bool { return g == id })
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addMembership(w http.ResponseWriter, r *http.Request) {
	var m types.Membership
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid membership payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[m.UserID]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	if _, ok := s.groups[m.GroupID]; !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	if slices.Contains(u.GroupIDs, m.GroupID) {
		http.Error(w, "User is already a member of this group.", http.StatusBadRequest)
		return
	}
	u.GroupIDs = append(u.GroupIDs, m.GroupID)

	members := make([]types.Membership, 0)
	for _, other := range s.users {
		if slices.Contains(other.GroupIDs, m.GroupID) {
			members = append(members, types.Membership{GroupID: m.GroupID, UserID: other.ID})
		}
	}
	writeJSON(w, http.StatusOK, members)
}

// withCollection attaches the embedded collection object, as the server does
// for cards and dashboards.
func (s *Server) withCollection(id *int) *types.Collection {
	if id == nil {
		return nil
	}
	c, ok := s.collections[*id]
	if !ok {
		return nil
	}
	out := *c
	return &out
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	out := *q
	out.Collection = s.withCollection(q.CollectionID)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	var req struct {
		Archived *bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid card payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	if req.Archived != nil {
		q.Archived = *req.Archived
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) questionCSV(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	body, ok := s.csv[id]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write([]byte(body))
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dashboards[id]
	if !ok {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	out := *d
	out.Collection = s.withCollection(d.CollectionID)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listCollections(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []any{map[string]any{"id": "root", "name": "Our analytics", "location": nil}}
	ids := make([]int, 0, len(s.collections))
	for id := range s.collections {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, s.collections[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.collections[id]
	if !ok || !found {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getGraph(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	graph := s.copyGraph()
	s.mu.Unlock()

	if s.OnGraphRead != nil {
		s.OnGraphRead()
	}

	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	var req types.PermissionGraph
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid graph payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Revision != s.graph.Revision {
		http.Error(w, "Looks like someone else edited the permissions and your data is now stale. Please fetch new data and try again.", http.StatusConflict)
		return
	}
	for gid, perms := range req.Groups {
		for cid, p := range perms {
			s.setPermission(gid, cid, p)
		}
	}
	s.graph.Revision++
	writeJSON(w, http.StatusOK, s.copyGraph())
}
