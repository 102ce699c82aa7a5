// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/canonical/utill/internal/types"
)

// collectionEntry mirrors a collection listing item. The root collection is
// reported with the string id "root", so the id is decoded lazily.
type collectionEntry struct {
	ID              json.RawMessage `json:"id"`
	Name            string          `json:"name"`
	Location        string          `json:"location"`
	PersonalOwnerID *int            `json:"personal_owner_id"`
	Archived        bool            `json:"archived"`
}

func (c *Client) GetQuestion(ctx context.Context, id int) (*types.Question, error) {
	q := new(types.Question)
	if err := c.do(ctx, MethodGet, fmt.Sprintf("api/card/%d", id), nil, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (c *Client) GetDashboard(ctx context.Context, id int) (*types.Dashboard, error) {
	d := new(types.Dashboard)
	if err := c.do(ctx, MethodGet, fmt.Sprintf("api/dashboard/%d", id), nil, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Client) GetCollection(ctx context.Context, id int) (*types.Collection, error) {
	col := new(types.Collection)
	if err := c.do(ctx, MethodGet, fmt.Sprintf("api/collection/%d", id), nil, col); err != nil {
		return nil, err
	}
	return col, nil
}

// ListCollections returns every collection with a numeric id. The root
// collection is skipped.
func (c *Client) ListCollections(ctx context.Context) ([]types.Collection, error) {
	entries := make([]collectionEntry, 0)
	if err := c.do(ctx, MethodGet, "api/collection", nil, &entries); err != nil {
		return nil, err
	}

	out := make([]types.Collection, 0, len(entries))
	for _, e := range entries {
		id, err := strconv.Atoi(string(e.ID))
		if err != nil {
			continue
		}
		out = append(out, types.Collection{
			ID:              id,
			Name:            e.Name,
			Location:        e.Location,
			PersonalOwnerID: e.PersonalOwnerID,
			Archived:        e.Archived,
		})
	}
	return out, nil
}

func (c *Client) GetCollectionGraph(ctx context.Context) (*types.PermissionGraph, error) {
	g := new(types.PermissionGraph)
	if err := c.do(ctx, MethodGet, "api/collection/graph", nil, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateCollectionGraph submits a partial graph. The server rejects it when
// graph.Revision is not the current revision.
func (c *Client) UpdateCollectionGraph(ctx context.Context, graph *types.PermissionGraph) (*types.PermissionGraph, error) {
	out := new(types.PermissionGraph)
	if err := c.do(ctx, MethodPut, "api/collection/graph", graph, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadQuestion runs the saved question and writes its CSV export to w.
func (c *Client) DownloadQuestion(ctx context.Context, id int, w io.Writer) (int64, error) {
	return c.stream(ctx, MethodPost, fmt.Sprintf("api/card/%d/query/csv", id), nil, w)
}

func (c *Client) ArchiveQuestion(ctx context.Context, id int) error {
	return c.do(ctx, MethodPut, fmt.Sprintf("api/card/%d", id), map[string]bool{"archived": true}, nil)
}
