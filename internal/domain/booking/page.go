package booking

// Page is a pagination window over a booking listing. The `from` request
// parameter is an item offset, not a page index; it is converted to a page
// index by floor division, so offsets that are not exact multiples of the
// size resolve to whole-page granularity. Callers depend on that behavior.
type Page struct {
	Number int
	Size   int
}

// NewPage builds a Page from an item offset and a page size. Offsets at or
// below zero resolve to the first page.
func NewPage(from, size int) Page {
	number := 0
	if from > 0 {
		number = from / size
	}
	return Page{Number: number, Size: size}
}

// Offset returns the row offset of the page's first element.
func (p Page) Offset() int {
	return p.Number * p.Size
}
