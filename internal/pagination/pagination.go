// Package pagination normalises page/limit query input and builds the list
// envelope returned by paginated endpoints.
package pagination

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	maxPage = 1<<31 - 1
)

// Params is a normalised page window.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Meta describes a page within a result set.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

// Envelope is a page of data plus its metadata.
type Envelope[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Normalize turns raw query values into a valid window. Absent, non-numeric
// and zero values fall back to the defaults; decimals truncate toward zero.
func Normalize(page, limit string) Params {
	p := parseLeadingInt(page, DefaultPage)
	l := parseLeadingInt(limit, DefaultLimit)
	return NormalizeInts(p, l)
}

// NormalizeInts clamps already-parsed values. Zero means "use the default".
func NormalizeInts(page, limit int) Params {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	page = clamp(page, 1, maxPage)
	limit = clamp(limit, 1, MaxLimit)
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// NormalizeSearchLimit clamps a search result limit to [1, MaxLimit],
// defaulting to DefaultLimit.
func NormalizeSearchLimit(limit string) int {
	return clamp(parseLeadingInt(limit, DefaultLimit), 1, MaxLimit)
}

// BuildMeta computes page metadata for total items.
func BuildMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	meta := Meta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && totalPages > 0,
	}
	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// BuildEnvelope wraps data with its page metadata. A nil slice is rendered
// as an empty array.
func BuildEnvelope[T any](data []T, page, limit, total int) Envelope[T] {
	if data == nil {
		data = []T{}
	}
	return Envelope[T]{Data: data, Pagination: BuildMeta(page, limit, total)}
}

// parseLeadingInt reads an optional sign and the leading run of digits,
// ignoring whatever follows ("2.9" -> 2, "15abc" -> 15). A missing or zero
// value yields fallback.
func parseLeadingInt(raw string, fallback int) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return fallback
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// overflow: saturate in the direction of the sign
		if s[0] == '-' {
			return -1
		}
		return int(^uint(0) >> 1)
	}
	if n == 0 {
		return fallback
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
