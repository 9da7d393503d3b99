package mapping

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DuplicatePolicy decides what happens when two records share a NAMASTE code.
type DuplicatePolicy int

const (
	// DuplicateReject fails the load with a ValidationError.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateLastWins keeps the later record and drops the earlier one from
	// both indices. The surviving record keeps the earlier record's position in
	// the forward ordering.
	DuplicateLastWins
)

// ParseDuplicatePolicy maps the configuration spelling to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return DuplicateReject, nil
	case "last-wins", "overwrite":
		return DuplicateLastWins, nil
	default:
		return DuplicateReject, fmt.Errorf("unknown duplicate policy %q (want \"reject\" or \"last-wins\")", s)
	}
}

func (p DuplicatePolicy) String() string {
	if p == DuplicateLastWins {
		return "last-wins"
	}
	return "reject"
}

type loadOptions struct {
	duplicates DuplicatePolicy
}

// LoadOption configures how a Store is built.
type LoadOption func(*loadOptions)

// WithDuplicatePolicy sets the duplicate NAMASTE code policy.
func WithDuplicatePolicy(p DuplicatePolicy) LoadOption {
	return func(o *loadOptions) { o.duplicates = p }
}

// Store is the in-memory mapping index. It holds a forward index keyed by
// NAMASTE code and a reverse index keyed by ICD-11 code. A Store is immutable
// once NewStore returns and is safe for concurrent readers without locking.
type Store struct {
	forward     map[string]*Record
	order       []*Record // forward entries in load order
	sorted      []*Record // forward entries by ascending source code
	reverse     map[string][]*Record
	targetOrder []string // reverse keys in first-seen order
	metadata    map[string]any
}

// NewStore validates raw records and builds both indices. Any invalid record
// fails the whole build.
func NewStore(metadata map[string]any, raws []RawRecord, opts ...LoadOption) (*Store, error) {
	o := loadOptions{duplicates: DuplicateReject}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		forward:  make(map[string]*Record, len(raws)),
		reverse:  make(map[string][]*Record),
		metadata: maps.Clone(metadata),
	}
	if s.metadata == nil {
		s.metadata = map[string]any{}
	}

	// accepted holds records in load order; a slot is cleared when a later
	// duplicate replaces it.
	accepted := make([]*Record, 0, len(raws))
	acceptedAt := make(map[string]int, len(raws))
	orderAt := make(map[string]int, len(raws))
	firstIndex := make(map[string]int, len(raws))

	for i, raw := range raws {
		rec, err := decodeRecord(i, raw)
		if err != nil {
			return nil, err
		}

		if _, dup := s.forward[rec.SourceCode]; dup {
			if o.duplicates == DuplicateReject {
				return nil, &ValidationError{
					Index:  i,
					Code:   rec.SourceCode,
					Field:  "namaste_code",
					Reason: fmt.Sprintf("duplicate code, first defined by mapping %d", firstIndex[rec.SourceCode]),
				}
			}
			accepted[acceptedAt[rec.SourceCode]] = nil
			s.order[orderAt[rec.SourceCode]] = rec
		} else {
			firstIndex[rec.SourceCode] = i
			orderAt[rec.SourceCode] = len(s.order)
			s.order = append(s.order, rec)
		}

		s.forward[rec.SourceCode] = rec
		acceptedAt[rec.SourceCode] = len(accepted)
		accepted = append(accepted, rec)
	}

	for _, rec := range accepted {
		if rec == nil {
			continue
		}
		if _, seen := s.reverse[rec.TargetCode]; !seen {
			s.targetOrder = append(s.targetOrder, rec.TargetCode)
		}
		s.reverse[rec.TargetCode] = append(s.reverse[rec.TargetCode], rec)
	}

	s.sorted = slices.Clone(s.order)
	slices.SortFunc(s.sorted, func(a, b *Record) int {
		return strings.Compare(a.SourceCode, b.SourceCode)
	})

	return s, nil
}

func decodeRecord(i int, raw RawRecord) (*Record, error) {
	code := deref(raw.NamasteCode)

	required := []struct {
		field string
		value *string
	}{
		{"namaste_code", raw.NamasteCode},
		{"namaste_display", raw.NamasteDisplay},
		{"namaste_system", raw.NamasteSystem},
		{"icd11_code", raw.ICD11Code},
		{"icd11_display", raw.ICD11Display},
		{"equivalence", raw.Equivalence},
	}
	for _, r := range required {
		if r.value == nil || strings.TrimSpace(*r.value) == "" {
			return nil, &ValidationError{Index: i, Code: code, Field: r.field, Reason: "required field missing"}
		}
	}

	system, err := ParseTraditionalSystem(*raw.NamasteSystem)
	if err != nil {
		return nil, &ValidationError{Index: i, Code: code, Field: "namaste_system", Reason: err.Error()}
	}
	equiv, err := ParseEquivalence(*raw.Equivalence)
	if err != nil {
		return nil, &ValidationError{Index: i, Code: code, Field: "equivalence", Reason: err.Error()}
	}

	rec := &Record{
		SourceCode:    code,
		SourceDisplay: *raw.NamasteDisplay,
		SourceSystem:  system,
		TargetCode:    *raw.ICD11Code,
		TargetDisplay: *raw.ICD11Display,
		Equivalence:   equiv,
	}
	if raw.Notes != nil {
		notes := *raw.Notes
		rec.Notes = &notes
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BySource returns the record for a NAMASTE code.
func (s *Store) BySource(code string) (*Record, bool) {
	rec, ok := s.forward[code]
	return rec, ok
}

// ByTarget returns every record mapping to an ICD-11 code, in load order.
// The returned slice is a copy.
func (s *Store) ByTarget(code string) []*Record {
	return slices.Clone(s.reverse[code])
}

// Records returns all forward entries in load order.
func (s *Store) Records() []*Record {
	return slices.Clone(s.order)
}

// TargetCodes returns the distinct ICD-11 codes in the order they were first loaded.
func (s *Store) TargetCodes() []string {
	return slices.Clone(s.targetOrder)
}

// Metadata returns a shallow copy of the dataset metadata.
func (s *Store) Metadata() map[string]any {
	return maps.Clone(s.metadata)
}

// Len returns the number of forward entries.
func (s *Store) Len() int { return len(s.order) }

// ReverseLen returns the number of distinct ICD-11 codes.
func (s *Store) ReverseLen() int { return len(s.targetOrder) }
