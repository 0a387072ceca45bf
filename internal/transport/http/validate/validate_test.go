package validate

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/eventhub/internal/domain"
)

type sample struct {
	Title string `json:"title" validate:"required,min=3"`
	Limit int    `json:"limit" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid_body_decodes", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"abc","limit":5}`))
		var s sample
		require.NoError(t, DecodeJSON(r, &s))
		assert.Equal(t, "abc", s.Title)
	})

	t.Run("unknown_field_rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"abc","nope":1}`))
		var s sample
		err := DecodeJSON(r, &s)
		var ae *domain.AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, domain.CodeValidation, ae.Code)
	})

	t.Run("tag_violation_reports_field", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"ab","limit":-1}`))
		var s sample
		err := DecodeJSON(r, &s)
		var ae *domain.AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, domain.CodeValidation, ae.Code)
		assert.Contains(t, ae.Meta, "Title")
		assert.Contains(t, ae.Meta, "Limit")
	})
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, IsUUID("not-a-uuid"))
}
