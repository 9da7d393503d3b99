package mapping

import "strings"

// SearchField selects a record field for Search.
type SearchField int

const (
	FieldSourceDisplay SearchField = iota
	FieldTargetDisplay
	FieldNotes
	FieldSourceCode
	FieldTargetCode
)

// DefaultSearchFields are the fields searched when none are given.
var DefaultSearchFields = []SearchField{FieldSourceDisplay, FieldTargetDisplay, FieldNotes}

func (f SearchField) value(r *Record) string {
	switch f {
	case FieldSourceDisplay:
		return r.SourceDisplay
	case FieldTargetDisplay:
		return r.TargetDisplay
	case FieldNotes:
		return r.NotesText()
	case FieldSourceCode:
		return r.SourceCode
	case FieldTargetCode:
		return r.TargetCode
	}
	return ""
}

// ParseSearchField maps a field name as used in query strings to a SearchField.
func ParseSearchField(name string) (SearchField, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "namaste_display":
		return FieldSourceDisplay, true
	case "icd11_display":
		return FieldTargetDisplay, true
	case "notes":
		return FieldNotes, true
	case "namaste_code":
		return FieldSourceCode, true
	case "icd11_code":
		return FieldTargetCode, true
	}
	return 0, false
}

// Search returns every record whose selected fields contain query,
// ignoring case. Results are ordered by ascending source code. Empty fields
// never match.
func (s *Store) Search(query string, fields ...SearchField) []*Record {
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	q := strings.ToLower(query)

	var out []*Record
	for _, rec := range s.sorted {
		for _, f := range fields {
			v := f.value(rec)
			if v != "" && strings.Contains(strings.ToLower(v), q) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
