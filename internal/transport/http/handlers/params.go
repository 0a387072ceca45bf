package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrValidationMeta("invalid path param", map[string]string{
			name: "must be uuid",
		})
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryBoolPtr(r *http.Request, key string) *bool {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

func queryTimePtr(r *http.Request, key string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
			key: "must be RFC3339 timestamp",
		})
	}
	tt := t.UTC()
	return &tt, nil
}

func queryUUIDList(r *http.Request, key string) ([]uuid.UUID, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
				key: "must be a comma-separated list of uuids",
			})
		}
		out = append(out, id)
	}
	return out, nil
}
