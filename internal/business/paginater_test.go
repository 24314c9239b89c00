package business_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Agurato/filmbase/internal/business"
	"github.com/Agurato/filmbase/internal/model"
)

func TestGetPage(t *testing.T) {
	p := business.NewPaginater(10, 50)

	tests := []struct {
		name         string
		number, size int
		want         model.Page
		skip         int64
	}{
		{"defaults", 0, 0, model.Page{Number: 1, Size: 10}, 0},
		{"negative", -3, -1, model.Page{Number: 1, Size: 10}, 0},
		{"requested", 3, 20, model.Page{Number: 3, Size: 20}, 40},
		{"capped", 2, 500, model.Page{Number: 2, Size: 50}, 50},
		{"huge", math.MaxInt64, 10, model.Page{Number: math.MaxInt64/10 + 1, Size: 10}, math.MaxInt64 / 10 * 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := p.GetPage(tt.number, tt.size)
			assert.Equal(t, tt.want, page)
			assert.Equal(t, tt.skip, page.Skip())
		})
	}
}

func TestGetPageUnbounded(t *testing.T) {
	p := business.NewPaginater(0, 0)
	assert.Equal(t, model.Page{Number: 1, Size: business.DefaultPageSize}, p.GetPage(1, 0))
	assert.Equal(t, int64(5000), p.GetPage(1, 5000).Size)

	page := p.GetPage(math.MaxInt64, math.MaxInt64)
	assert.Equal(t, int64(2), page.Number)
	assert.Equal(t, int64(math.MaxInt64), page.Skip())
}

func TestGetTotalPages(t *testing.T) {
	p := business.NewPaginater(10, 0)
	page := model.Page{Number: 1, Size: 10}
	assert.Equal(t, 0, p.GetTotalPages(page, 0))
	assert.Equal(t, 1, p.GetTotalPages(page, 1))
	assert.Equal(t, 1, p.GetTotalPages(page, 10))
	assert.Equal(t, 2, p.GetTotalPages(page, 11))
}
