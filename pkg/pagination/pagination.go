package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// Bounds sets the default and maximum page size for one endpoint.
type Bounds struct {
	Default int
	Max     int
}

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// Parse reads limit and offset from q. The FHIR spellings _count and _offset
// are accepted as well. Unlike a lenient parse, a value that is present but
// out of range is an error so the caller can answer 400.
func Parse(q url.Values, b Bounds) (Params, error) {
	p := Params{Limit: b.Default}

	if raw := first(q, "limit", "_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > b.Max {
			return Params{}, fmt.Errorf("limit must be an integer between 1 and %d", b.Max)
		}
		p.Limit = n
	}

	if raw := first(q, "offset", "_offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Params{}, fmt.Errorf("offset must be a non-negative integer")
		}
		p.Offset = n
	}

	return p, nil
}

func first(q url.Values, names ...string) string {
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v
		}
	}
	return ""
}

// Window returns the slice bounds of the page within total items.
func (p Params) Window(total int) (start, end int) {
	start = min(p.Offset, total)
	end = total
	if p.Limit > 0 {
		end = min(start+p.Limit, total)
	}
	return start, end
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Limit > 0 && p.Offset+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page.
// Returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}
