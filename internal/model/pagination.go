package model

// Page is a window over a filtered collection. Number is 1-based.
type Page struct {
	Number int64
	Size   int64
}

// Skip returns the number of items before the first item of the page
func (p Page) Skip() int64 {
	return (p.Number - 1) * p.Size
}
