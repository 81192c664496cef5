package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds offset/limit pagination parameters extracted from query strings.
type Params struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Offset: 0,
		Limit:  DefaultLimit,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Out-of-range or malformed values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if offset := r.URL.Query().Get("offset"); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil && v >= 0 {
			p.Offset = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= MaxLimit {
			p.Limit = v
		}
	}

	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	HasNext    bool `json:"has_next"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Offset:     params.Offset,
		Limit:      params.Limit,
		HasNext:    params.Offset+len(data) < totalCount,
	}
}
