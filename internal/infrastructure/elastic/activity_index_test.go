package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *ActivityIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewActivityIndex(es, "auth-activity")
}

func TestActivityIndex_Insert(t *testing.T) {
	var gotPath string
	var gotDoc map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := idx.Insert(context.Background(), entity.Activity{
		UserID: "u-1", Email: "a@b.test", Action: entity.ActionSigninSuccess, IP: "203.0.113.9",
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "/auth-activity/_doc", gotPath)
	assert.Equal(t, "signin_success", gotDoc["action"])
	assert.Equal(t, "2026-01-01T00:00:00Z", gotDoc["occurred_at"])
}

func TestActivityIndex_InsertErrorStatus(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})
	assert.Error(t, idx.Insert(context.Background(), entity.Activity{Email: "a@b.test"}))
}

func TestActivityIndex_Recent(t *testing.T) {
	var query string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		query = string(b)
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"user_id":"u-1","email":"a@b.test","action":"signin_success","occurred_at":"2026-01-02T00:00:00Z"}},
			{"_source":{"user_id":"u-1","email":"a@b.test","action":"signin_failure","occurred_at":"2026-01-01T00:00:00Z"}}
		]}}`))
	})

	got, err := idx.Recent(context.Background(), "u-1", 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entity.ActionSigninSuccess, got[0].Action)
	assert.True(t, strings.Contains(query, `"size":10`), query)
	assert.Contains(t, query, `"user_id":"u-1"`)
}
