package session

// Page describes one window into a result set. Pages are 1-based and
// the window size is fixed for the life of a session.
type Page struct {
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// NewPage computes the window for the requested page number against a
// total of matching records. Out-of-range requests clamp to the nearest
// valid page; an empty result set still has one (empty) page so the
// indicator always reads sensibly.
func NewPage(requested, size, total int) Page {
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the record offset of the window start.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}
