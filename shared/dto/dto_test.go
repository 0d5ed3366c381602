package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"resort/shared/constant"
	"resort/shared/dto"
	"resort/shared/model"
	"resort/shared/timezone"
)

func TestMetadata_FromModel(t *testing.T) {
	created := time.Date(2025, 12, 20, 9, 30, 0, 0, time.UTC)
	modified := created.Add(48 * time.Hour)

	var metadata dto.Metadata
	metadata.FromModel(model.Metadata{
		CreatedAt:  created,
		ModifiedAt: modified,
		CreatedBy:  "guest-1",
		ModifiedBy: constant.ContextSystem,
	})

	assert.Equal(t, timezone.Format(created, constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, timezone.Format(modified, constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "guest-1", metadata.CreatedBy)
	assert.Equal(t, constant.ContextSystem, metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		expected     dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=check_in&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "check_in", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults when empty",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults when empty",
			expected: dto.QueryParams{},
		},
		{
			name:         "invalid numbers fall back",
			query:        "page=abc&limit=-5",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "zero page falls back",
			query:        "page=0",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "limit is capped",
			query:        "limit=5000",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.MaxValueLimit},
		},
		{
			name:         "unknown sort direction ignored",
			query:        "sort_by=amount&sort_dir=sideways",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit, SortBy: "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin-api/bookings?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.withDefaults)

			assert.Equal(t, tt.expected, params)
		})
	}
}
