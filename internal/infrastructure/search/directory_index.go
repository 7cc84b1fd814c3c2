// Package search projects users into Elasticsearch for directory search.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
)

type DirectoryIndex struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
}

func NewDirectoryIndex(es *elasticsearch.Client, index string) *DirectoryIndex {
	return &DirectoryIndex{es: es, index: index, timeout: 3 * time.Second}
}

type userDoc struct {
	ID        string  `json:"id"`
	TenantID  string  `json:"tenant_id"`
	UnitID    *string `json:"unit_id,omitempty"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	FullName  string  `json:"full_name"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

func toDoc(u *entity.User) userDoc {
	return userDoc{
		ID:        u.ID,
		TenantID:  u.TenantID,
		UnitID:    u.UnitID,
		Email:     u.Email.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      u.Role.String(),
		Active:    u.Active,
		AvatarURL: u.AvatarURL,
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (d *DirectoryIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(toDoc(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", u.ID, res.Status())
	}
	return nil
}

// buildQuery combines a multi_match on name and email with mandatory term
// filters for the caller's scope.
func buildQuery(q port.DirectoryQuery) map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"tenant_id": q.TenantID}},
	}
	if q.UnitID != nil {
		filters = append(filters, map[string]any{"term": map[string]any{"unit_id": *q.UnitID}})
	}
	if q.UserID != nil {
		filters = append(filters, map[string]any{"term": map[string]any{"id": *q.UserID}})
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q.Text,
						"fields":    []string{"email^2", "full_name", "first_name", "last_name"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filters,
			},
		},
		"size":    q.Size,
		"_source": false,
	}
}

func (d *DirectoryIndex) Search(ctx context.Context, q port.DirectoryQuery) ([]string, error) {
	b, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := d.es.Search(
		d.es.Search.WithContext(c),
		d.es.Search.WithIndex(d.index),
		d.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}

var _ port.DirectoryIndex = (*DirectoryIndex)(nil)
