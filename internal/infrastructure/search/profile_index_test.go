package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/infrastructure/search"
	"github.com/oksasatya/linkbio/pkg/helpers"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeES answers like an Elasticsearch node and records every request.
type fakeES struct {
	mu       sync.Mutex
	requests []recorded
	handle   func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if f.handle != nil {
		f.handle(w, r)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func newIndex(t *testing.T, f *fakeES) *search.ProfileIndex {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return search.NewProfileIndex(es, "profiles")
}

func TestProfileIndex_IndexProfilesDropsPrivateLinks(t *testing.T) {
	f := &fakeES{}
	idx := newIndex(t, f)

	u := &entity.User{ID: "u1", Profiles: []entity.Profile{{
		ID:      "p1",
		Name:    "Alice",
		URLSlug: "alice",
		Links: []entity.Link{
			{Platform: "github", URL: "https://github.com/alice"},
			{Platform: "bank", URL: "https://bank.test/alice", IsPrivate: true},
		},
	}}}
	require.NoError(t, idx.IndexProfiles(context.Background(), u))

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/profiles/_doc/p1", req.path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "u1", doc["userId"])
	assert.Equal(t, "alice", doc["urlSlug"])
	assert.Len(t, doc["links"], 1)
	assert.NotContains(t, req.body, "bank.test")
}

func TestProfileIndex_RemoveProfilesIgnoresMissing(t *testing.T) {
	f := &fakeES{handle: func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/gone") {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write([]byte(`{}`))
	}}
	idx := newIndex(t, f)

	require.NoError(t, idx.RemoveProfiles(context.Background(), []string{"p1", "gone"}))
	require.Len(t, f.requests, 2)
	assert.Equal(t, http.MethodDelete, f.requests[0].method)
}

func TestProfileIndex_Search(t *testing.T) {
	f := &fakeES{handle: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"id":"p1","name":"Alice","urlSlug":"alice","links":[],"userId":"u1"}},
			{"_source":{"id":"p2","name":"Alicia","urlSlug":"alicia","links":[],"userId":"u2"}}
		]}}`))
	}}
	idx := newIndex(t, f)

	got, err := idx.Search(context.Background(), "alice", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].URLSlug)
	assert.Equal(t, "Alicia", got[1].Name)

	require.Len(t, f.requests, 1)
	assert.Equal(t, "/profiles/_search", f.requests[0].path)
	assert.Contains(t, f.requests[0].body, `"multi_match"`)
	assert.Contains(t, f.requests[0].body, `"size":5`)
}

func TestProfileIndex_SearchError(t *testing.T) {
	f := &fakeES{handle: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}}
	idx := newIndex(t, f)

	_, err := idx.Search(context.Background(), "alice", 5)
	assert.Error(t, err)
}

func TestProfileIndex_EnsureIndexCreatesWhenMissing(t *testing.T) {
	f := &fakeES{handle: func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}}
	idx := newIndex(t, f)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, f.requests, 2)
	assert.Equal(t, http.MethodPut, f.requests[1].method)
	assert.Contains(t, f.requests[1].body, `"urlSlug"`)
}
