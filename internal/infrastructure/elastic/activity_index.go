package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

// ActivityIndex stores auth activity documents in an Elasticsearch index.
type ActivityIndex struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
}

func NewActivityIndex(es *elasticsearch.Client, index string) *ActivityIndex {
	return &ActivityIndex{es: es, index: index, timeout: 3 * time.Second}
}

type activityDoc struct {
	UserID     string         `json:"user_id,omitempty"`
	Email      string         `json:"email"`
	Action     string         `json:"action"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Insert indexes one activity document.
func (a *ActivityIndex) Insert(ctx context.Context, act entity.Activity) error {
	b, err := json.Marshal(activityDoc{
		UserID: act.UserID, Email: act.Email, Action: act.Action, IP: act.IP,
		UserAgent: act.UserAgent, Metadata: act.Metadata, OccurredAt: act.OccurredAt.UTC(),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: a.index, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err := req.Do(c, a.es)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Recent returns the newest activity for a user, newest first.
func (a *ActivityIndex) Recent(ctx context.Context, userID string, size int) ([]entity.Activity, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"user_id": userID},
		},
		"sort": []any{map[string]any{"occurred_at": map[string]any{"order": "desc"}}},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	res, err := a.es.Search(
		a.es.Search.WithContext(c),
		a.es.Search.WithIndex(a.index),
		a.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source activityDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Activity, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, entity.Activity{
			UserID: d.UserID, Email: d.Email, Action: d.Action, IP: d.IP,
			UserAgent: d.UserAgent, Metadata: d.Metadata, OccurredAt: d.OccurredAt,
		})
	}
	return out, nil
}
