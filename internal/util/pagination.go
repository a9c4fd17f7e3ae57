package util

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Window clamps limit and offset query values.
func Window(limitParam, offsetParam string) (offset, limit int) {
	limit = ParseIntDefault(limitParam, DefaultPageSize)
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	offset = ParseIntDefault(offsetParam, 0)
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

type Meta struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
}

func NewMeta(offset, limit int, total int64) Meta {
	return Meta{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasPrev: offset > 0,
		HasNext: int64(offset+limit) < total,
	}
}
