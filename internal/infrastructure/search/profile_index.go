// Package search mirrors public profile data into Elasticsearch for
// full-text lookup. The document store stays the source of truth.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/linkbio/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "userId":    {"type": "keyword"},
      "id":        {"type": "keyword"},
      "urlSlug":   {"type": "keyword"},
      "name":      {"type": "text"},
      "about":     {"type": "text"},
      "phoneNo":   {"type": "keyword", "index": false},
      "avatarUrl": {"type": "keyword", "index": false},
      "links":     {"type": "object", "enabled": false}
    }
  }
}`

// profileDoc is the indexed form of a profile: public links only.
type profileDoc struct {
	entity.Profile
	UserID string `json:"userId"`
}

type ProfileIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProfileIndex(es *elasticsearch.Client, index string) *ProfileIndex {
	return &ProfileIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (p *ProfileIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{p.index}}.Do(c, p.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: p.index, Body: strings.NewReader(indexMapping)}.Do(c, p.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(readAll(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", p.index, res.Status())
	}
	return nil
}

func (p *ProfileIndex) IndexProfiles(ctx context.Context, u *entity.User) error {
	for _, prof := range u.Profiles {
		doc := profileDoc{Profile: prof, UserID: u.ID}
		doc.Links = prof.PublicLinks()
		b, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := p.do(ctx, esapi.IndexRequest{
			Index:      p.index,
			DocumentID: prof.ID,
			Body:       bytes.NewReader(b),
			Refresh:    "false",
		}); err != nil {
			return fmt.Errorf("index profile %s: %w", prof.ID, err)
		}
	}
	return nil
}

func (p *ProfileIndex) RemoveProfiles(ctx context.Context, profileIDs []string) error {
	for _, id := range profileIDs {
		err := p.do(ctx, esapi.DeleteRequest{Index: p.index, DocumentID: id})
		if err != nil && !strings.Contains(err.Error(), "404") {
			return fmt.Errorf("delete profile %s: %w", id, err)
		}
	}
	return nil
}

// Search performs a multi_match on name and about.
func (p *ProfileIndex) Search(ctx context.Context, q string, size int) ([]entity.Profile, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "about"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := p.es.Search(
		p.es.Search.WithContext(c),
		p.es.Search.WithIndex(p.index),
		p.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.Profile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Profile, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (p *ProfileIndex) do(ctx context.Context, req esapi.Request) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, p.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return nil
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}
