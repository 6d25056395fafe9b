package pagination

import (
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and applies the limit defaults.
func (p Params) Normalize() Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Params{Page: page, Limit: NormalizeLimit(p.Limit)}
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Meta builds the response metadata for a page of a result set holding total rows.
// Pages past the end report no next page and point prevPage at the last real page.
func Meta(p Params, total int64) types.PageMeta {
	n := p.Normalize()
	totalPages := int((total + int64(n.Limit) - 1) / int64(n.Limit))

	meta := types.PageMeta{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
	if n.Page < totalPages {
		next := n.Page + 1
		meta.NextPage = &next
	}
	if n.Page > 1 {
		prev := n.Page - 1
		if prev > totalPages && totalPages > 0 {
			prev = totalPages
		}
		if totalPages > 0 {
			meta.PrevPage = &prev
		}
	}
	return meta
}
