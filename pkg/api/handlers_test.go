package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayounara/foster-btree/pkg/btree"
	"github.com/sayounara/foster-btree/pkg/codec"
	"github.com/sayounara/foster-btree/pkg/store"
)

func newTestRouter(t *testing.T, snapshot func() error) (http.Handler, *btree.Tree[[]byte, []byte, uint32]) {
	t.Helper()

	tree, err := btree.New(codec.NewBytesPairCodec[uint32](), bytes.Equal, btree.Config{PageSize: 512})
	require.NoError(t, err)

	server := NewServer(tree, snapshot, ServerConfig{}, nil)
	return NewRouter(server), tree
}

func doRequest(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestPutGetRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/greeting", []byte("hello world"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/kv/greeting", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("hello world"), rec.Body.Bytes())
}

func TestPutReplacesValue(t *testing.T) {
	router, tree := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/k", []byte("one"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodPut, "/api/v1/kv/k", []byte("two"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, tree.Len())

	rec = doRequest(t, router, http.MethodGet, "/api/v1/kv/k", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("two"), rec.Body.Bytes())
}

func TestGetMissingKey(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/kv/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Key not found", resp.Error)
}

func TestDeleteKey(t *testing.T) {
	router, tree := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/doomed", []byte("x"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/kv/doomed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, tree.Len())

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/kv/doomed", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListKeysWithPrefix(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, key := range []string{"user:alice", "user:bob", "order:1"} {
		rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/"+key, []byte("v"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/kv?prefix=user:", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Keys []string `json:"keys"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"user:alice", "user:bob"}, resp.Data.Keys)
}

func TestStats(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, key := range []string{"a", "b", "c"} {
		rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/"+key, []byte("v"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Keys)
	assert.GreaterOrEqual(t, resp.Data.Height, 1)
}

func TestSnapshotWithoutBackend(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/snapshot", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSnapshotWritesPages(t *testing.T) {
	ps, err := store.NewPageStore(store.PageStoreConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	tree, err := btree.New(codec.NewBytesPairCodec[uint32](), bytes.Equal, btree.Config{PageSize: 512})
	require.NoError(t, err)

	server := NewServer(tree, func() error { return tree.Snapshot(ps) }, ServerConfig{}, nil)
	router := NewRouter(server)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/kv/persist-me", []byte("payload"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	restored, err := btree.Restore(codec.NewBytesPairCodec[uint32](), bytes.Equal, btree.Config{PageSize: 512}, ps)
	require.NoError(t, err)
	value, err := restored.Get([]byte("persist-me"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
