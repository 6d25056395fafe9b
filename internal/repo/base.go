package repo

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a Base bound to tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	return Base{db: tx}
}

// Search narrows query to rows where any of columns contains term,
// case-insensitively. A blank term leaves the query untouched.
func Search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + escapeLike(term) + "%"
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// Paginate counts the filtered query, then loads the requested page into dest.
// Associations named in preloads are loaded with the page only.
func Paginate(query *gorm.DB, params pagination.Params, order string, dest any, preloads ...string) (types.PageMeta, error) {
	params = params.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return types.PageMeta{}, err
	}

	page := query.Session(&gorm.Session{})
	for _, assoc := range preloads {
		page = page.Preload(assoc)
	}
	if err := page.
		Order(order).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(dest).Error; err != nil {
		return types.PageMeta{}, err
	}

	return pagination.Meta(params, total), nil
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
