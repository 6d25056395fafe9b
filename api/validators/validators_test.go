package validators

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemBody struct {
	Product  string `json:"product" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type orderBody struct {
	Name  string     `json:"name" validate:"required"`
	Items []itemBody `json:"items" validate:"required,min=1,dive"`
}

func fieldNames(err error) []string {
	names := []string{}
	for _, f := range pkgerrors.Fields(err) {
		names = append(names, f.Name)
	}
	return names
}

func TestDecodeJSONBodyFieldErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"","items":[{"product":"nope","quantity":0}]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.ElementsMatch(t, []string{"name", "items[0].product", "items[0].quantity"}, fieldNames(err))
}

func TestDecodeJSONBodyRejectsUnknownAndMalformed(t *testing.T) {
	var body orderBody
	err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","extra":1}`)), &body)
	require.Error(t, err)
	assert.Equal(t, []string{"extra"}, fieldNames(err))

	err = DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`)), &body)
	require.Error(t, err)
	assert.Equal(t, []string{"body"}, fieldNames(err))

	err = DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(``)), &body)
	require.Error(t, err)
	assert.Equal(t, []string{"body"}, fieldNames(err))

	err = DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(`{"name":7}`)), &body)
	require.Error(t, err)
	assert.Equal(t, []string{"name"}, fieldNames(err))
}

func TestParsePaginationClamps(t *testing.T) {
	params, err := ParsePagination(httptest.NewRequest("GET", "/?page=-3&limit=1000", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.MaxLimit, params.Limit)

	_, err = ParsePagination(httptest.NewRequest("GET", "/?page=two", nil))
	require.Error(t, err)
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange(httptest.NewRequest("GET", "/?fromDate=2024-03-01&toDate=2024-03-01", nil), "fromDate", "toDate")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC), *to)

	_, to, err = ParseDateRange(httptest.NewRequest("GET", "/?toDate=2024-03-01T10:00:00Z", nil), "fromDate", "toDate")
	require.NoError(t, err)
	assert.Equal(t, 10, to.Hour())

	_, _, err = ParseDateRange(httptest.NewRequest("GET", "/?fromDate=2024-03-02&toDate=2024-03-01", nil), "fromDate", "toDate")
	require.Error(t, err)
	assert.Equal(t, []string{"fromDate"}, fieldNames(err))

	_, _, err = ParseDateRange(httptest.NewRequest("GET", "/?fromDate=03/01/2024", nil), "fromDate", "toDate")
	require.Error(t, err)
}

func TestParseAmountRangeAndUUID(t *testing.T) {
	lo, hi, err := ParseAmountRange(httptest.NewRequest("GET", "/?minAmount=10.5&maxAmount=20", nil), "minAmount", "maxAmount")
	require.NoError(t, err)
	assert.Equal(t, "10.5", lo.String())
	assert.Equal(t, "20", hi.String())

	_, _, err = ParseAmountRange(httptest.NewRequest("GET", "/?minAmount=30&maxAmount=20", nil), "minAmount", "maxAmount")
	require.Error(t, err)

	_, err = ParseQueryUUID(httptest.NewRequest("GET", "/?customer=abc", nil), "customer")
	require.Error(t, err)
	assert.Equal(t, []string{"customer"}, fieldNames(err))

	id, err := ParseQueryUUID(httptest.NewRequest("GET", "/", nil), "customer")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestSanitizeStringCollapsesAndCapsRunes(t *testing.T) {
	assert.Equal(t, "cold brew", SanitizeString("  cold \t  brew\n", 0))
	assert.Equal(t, "café", SanitizeString("café au lait", 4))
	assert.Equal(t, "ab", SanitizeString("ab cd", 3))

	r := httptest.NewRequest("GET", "/api/v1/products?search="+strings.Repeat("x", 150), nil)
	assert.Len(t, ParseSearch(r), 100)
}
