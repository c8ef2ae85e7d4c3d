package pagination

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery_Defaults(t *testing.T) {
	p := FromQuery(url.Values{}, 10)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Skip)
}

func TestFromQuery_CustomValues(t *testing.T) {
	p := FromQuery(url.Values{"page": {"3"}, "limit": {"25"}}, 10)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Skip)
}

func TestFromQuery_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"negative page", url.Values{"page": {"-1"}}},
		{"zero page", url.Values{"page": {"0"}}},
		{"not a number", url.Values{"page": {"abc"}, "limit": {"xyz"}}},
		{"zero limit", url.Values{"limit": {"0"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromQuery(tt.query, 12)
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 12, p.Limit)
		})
	}
}

func TestFromQuery_LimitClampedToMax(t *testing.T) {
	p := FromQuery(url.Values{"page": {"2"}, "limit": {"500"}}, 12)

	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, MaxLimit, p.Skip)
}

func TestFromQuery_HugePageDoesNotOverflowSkip(t *testing.T) {
	p := FromQuery(url.Values{"page": {strconv.Itoa(math.MaxInt)}, "limit": {"100"}}, 10)

	assert.Equal(t, maxPage, p.Page)
	assert.GreaterOrEqual(t, p.Skip, 0)
	assert.Equal(t, (maxPage-1)*MaxLimit, p.Skip)
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		pages int64
	}{
		{"empty", 0, 10, 0},
		{"exact", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"single", 1, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMeta(tt.total, Params{Page: 1, Limit: tt.limit})
			assert.Equal(t, tt.pages, meta.Pages)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.limit, meta.Limit)
		})
	}
}
