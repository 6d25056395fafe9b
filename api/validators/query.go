package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Validation("query parameter must be numeric", pkgerrors.Field(key, "must be numeric"))
	}
	if value < min || value > max {
		return 0, pkgerrors.Validation("query parameter out of range",
			pkgerrors.Field(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max)))
	}
	return value, nil
}

// ParsePagination reads page and limit. A page below 1 is treated as 1 and
// an oversized limit is clamped.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := parseLenientInt(r, "page", 1)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := parseLenientInt(r, "limit", pagination.DefaultLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}.Normalize(), nil
}

func parseLenientInt(r *http.Request, key string, defaultVal int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Validation("query parameter must be numeric", pkgerrors.Field(key, "must be numeric"))
	}
	return value, nil
}

// ParseQueryUUID returns nil when key is absent.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid query parameter", pkgerrors.Field(key, "must be a valid UUID"))
	}
	return &id, nil
}

func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid query parameter", pkgerrors.Field(key, "must be a decimal amount"))
	}
	return &value, nil
}

// ParseQueryDate accepts YYYY-MM-DD or RFC3339. A bare date used as an upper
// bound (endOfDay) covers the whole day.
func ParseQueryDate(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, pkgerrors.Validation("invalid query parameter", pkgerrors.Field(key, "must be YYYY-MM-DD or RFC3339"))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ParseDateRange reads fromKey/toKey and rejects an inverted range.
func ParseDateRange(r *http.Request, fromKey, toKey string) (*time.Time, *time.Time, error) {
	from, err := ParseQueryDate(r, fromKey, false)
	if err != nil {
		return nil, nil, err
	}
	to, err := ParseQueryDate(r, toKey, true)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, pkgerrors.Validation("invalid date range", pkgerrors.Field(fromKey, "must not be after "+toKey))
	}
	return from, to, nil
}

// ParseAmountRange reads minKey/maxKey and rejects an inverted range.
func ParseAmountRange(r *http.Request, minKey, maxKey string) (*decimal.Decimal, *decimal.Decimal, error) {
	lo, err := ParseQueryDecimal(r, minKey)
	if err != nil {
		return nil, nil, err
	}
	hi, err := ParseQueryDecimal(r, maxKey)
	if err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return nil, nil, pkgerrors.Validation("invalid amount range", pkgerrors.Field(minKey, "must not exceed "+maxKey))
	}
	return lo, hi, nil
}

// ParseSearch trims the search term and caps its length.
func ParseSearch(r *http.Request) string {
	return SanitizeString(r.URL.Query().Get("search"), 100)
}
