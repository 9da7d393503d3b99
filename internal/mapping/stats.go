package mapping

// Statistics summarizes the contents of a Store.
type Statistics struct {
	TotalMappings       int            `json:"total_mappings"`
	ByTraditionalSystem map[string]int `json:"by_traditional_system"`
	ByEquivalence       map[string]int `json:"by_equivalence"`
	ReverseMappings     int            `json:"reverse_mappings"`
	Metadata            map[string]any `json:"metadata"`
}

// Statistics counts forward entries by traditional system and equivalence.
func (s *Store) Statistics() Statistics {
	st := Statistics{
		TotalMappings:       len(s.order),
		ByTraditionalSystem: make(map[string]int),
		ByEquivalence:       make(map[string]int),
		ReverseMappings:     len(s.targetOrder),
		Metadata:            s.Metadata(),
	}
	for _, rec := range s.order {
		st.ByTraditionalSystem[rec.SourceSystem.String()]++
		st.ByEquivalence[rec.Equivalence.String()]++
	}
	return st
}
