package mapping

// Direction is the translation direction implied by a pair of system URIs.
type Direction int

const (
	DirectionUnsupported Direction = iota
	DirectionForward               // NAMASTE to ICD-11
	DirectionReverse               // ICD-11 to NAMASTE
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionReverse:
		return "reverse"
	default:
		return "unsupported"
	}
}

// ResolveDirection picks the direction for a source and target system URI.
// Only the two exact URI pairs are recognized.
func ResolveDirection(sourceSystem, targetSystem string) Direction {
	switch {
	case sourceSystem == SystemNAMASTE && targetSystem == SystemICD11:
		return DirectionForward
	case sourceSystem == SystemICD11 && targetSystem == SystemNAMASTE:
		return DirectionReverse
	default:
		return DirectionUnsupported
	}
}

// Status is the outcome of a translation.
type Status string

const (
	StatusFound                Status = "found"
	StatusNotFound             Status = "not-found"
	StatusUnsupportedDirection Status = "unsupported-direction"
)

// Resolution is the result of Translate. Primary is nil unless Status is
// StatusFound. For reverse lookups Matches holds every record sharing the
// ICD-11 code in load order and Primary is the first of them.
type Resolution struct {
	Status    Status
	Direction Direction
	Primary   *Record
	Matches   []*Record
}

// Found reports whether the translation produced a match.
func (r Resolution) Found() bool { return r.Status == StatusFound }

// TargetCoding returns the coding on the target side of Primary.
func (r Resolution) TargetCoding() Coding {
	if r.Primary == nil {
		return Coding{}
	}
	if r.Direction == DirectionReverse {
		return Coding{System: SystemNAMASTE, Code: r.Primary.SourceCode, Display: r.Primary.SourceDisplay}
	}
	return Coding{System: SystemICD11, Code: r.Primary.TargetCode, Display: r.Primary.TargetDisplay}
}

// SourceCoding returns the coding on the source side of Primary.
func (r Resolution) SourceCoding() Coding {
	if r.Primary == nil {
		return Coding{}
	}
	if r.Direction == DirectionReverse {
		return Coding{System: SystemICD11, Code: r.Primary.TargetCode, Display: r.Primary.TargetDisplay}
	}
	return Coding{System: SystemNAMASTE, Code: r.Primary.SourceCode, Display: r.Primary.SourceDisplay}
}

// Translate resolves code from sourceSystem into targetSystem.
func (s *Store) Translate(code, sourceSystem, targetSystem string) Resolution {
	dir := ResolveDirection(sourceSystem, targetSystem)
	res := Resolution{Status: StatusNotFound, Direction: dir}

	switch dir {
	case DirectionForward:
		if rec, ok := s.forward[code]; ok {
			res.Status = StatusFound
			res.Primary = rec
			res.Matches = []*Record{rec}
		}
	case DirectionReverse:
		if recs := s.reverse[code]; len(recs) > 0 {
			res.Status = StatusFound
			res.Primary = recs[0]
			res.Matches = append([]*Record(nil), recs...)
		}
	default:
		res.Status = StatusUnsupportedDirection
	}
	return res
}
