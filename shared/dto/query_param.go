package dto

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"resort/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string. Invalid
// numbers are ignored and limit is capped at MaxValueLimit. With withDefaults set, a missing
// page or limit falls back to the listing defaults.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	values := r.URL.Query()

	if page, ok := positive(values, constant.RequestParamPage); ok {
		q.Page = page
	}

	if limit, ok := positive(values, constant.RequestParamLimit); ok {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := values.Get(constant.RequestParamSortBy); sortBy != constant.Empty {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !withDefaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

func positive(values url.Values, key string) (int, bool) {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}
