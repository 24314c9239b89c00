package business

import (
	"math"

	"github.com/Agurato/filmbase/internal/model"
)

const DefaultPageSize int64 = 10

// Paginater resolves requested page numbers and sizes into storage windows
type Paginater struct {
	defaultPageSize int64
	maxPageSize     int64
}

// NewPaginater instantiates a new Paginater.
// A zero defaultPageSize falls back to DefaultPageSize, a zero maxPageSize means no upper bound.
func NewPaginater(defaultPageSize, maxPageSize int64) *Paginater {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	return &Paginater{
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetPage returns the window for a 1-based page number and a page size
func (p *Paginater) GetPage(number, size int) model.Page {
	page := model.Page{
		Number: int64(number),
		Size:   int64(size),
	}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = p.defaultPageSize
	}
	if p.maxPageSize > 0 && page.Size > p.maxPageSize {
		page.Size = p.maxPageSize
	}
	// Past this page, Skip overflows
	if last := math.MaxInt64/page.Size + 1; page.Number > last {
		page.Number = last
	}
	return page
}

// GetTotalPages returns the number of pages needed to hold total items
func (p *Paginater) GetTotalPages(page model.Page, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + page.Size - 1) / page.Size)
}
