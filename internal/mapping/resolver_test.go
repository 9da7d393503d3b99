package mapping

import "testing"

func TestTranslate_ForwardEveryRecord(t *testing.T) {
	s := sampleStore(t)
	for _, rec := range s.Records() {
		res := s.Translate(rec.SourceCode, SystemNAMASTE, SystemICD11)
		if !res.Found() {
			t.Errorf("%s: expected found, got %s", rec.SourceCode, res.Status)
			continue
		}
		c := res.TargetCoding()
		if c.Code != rec.TargetCode || c.Display != rec.TargetDisplay || res.Primary.Equivalence != rec.Equivalence {
			t.Errorf("%s: unexpected target %+v", rec.SourceCode, c)
		}
		if c.System != SystemICD11 {
			t.Errorf("%s: expected ICD-11 system, got %s", rec.SourceCode, c.System)
		}
	}
}

func TestTranslate_ReverseContainsEveryRecord(t *testing.T) {
	s := sampleStore(t)
	for _, rec := range s.Records() {
		res := s.Translate(rec.TargetCode, SystemICD11, SystemNAMASTE)
		if !res.Found() {
			t.Errorf("%s: expected found, got %s", rec.TargetCode, res.Status)
			continue
		}
		contains := false
		for _, m := range res.Matches {
			if m.SourceCode == rec.SourceCode {
				contains = true
				break
			}
		}
		if !contains {
			t.Errorf("reverse of %s does not contain %s", rec.TargetCode, rec.SourceCode)
		}
	}
}

func TestTranslate_Pandu(t *testing.T) {
	s := sampleStore(t)

	fwd := s.Translate("NAM-1001", SystemNAMASTE, SystemICD11)
	if fwd.Status != StatusFound || fwd.Direction != DirectionForward {
		t.Fatalf("expected forward hit, got %s/%s", fwd.Status, fwd.Direction)
	}
	if fwd.Primary.Equivalence != EquivalenceEquivalent {
		t.Errorf("expected equivalent, got %s", fwd.Primary.Equivalence)
	}
	if c := fwd.TargetCoding(); c.Code != "DB64.0" || c.Display != "Iron deficiency anaemia" {
		t.Errorf("unexpected forward coding %+v", c)
	}

	rev := s.Translate("DB64.0", SystemICD11, SystemNAMASTE)
	if rev.Status != StatusFound || rev.Direction != DirectionReverse {
		t.Fatalf("expected reverse hit, got %s/%s", rev.Status, rev.Direction)
	}
	c := rev.TargetCoding()
	if c.Code != "NAM-1001" || c.Display != "Pandu" || c.System != SystemNAMASTE {
		t.Errorf("unexpected reverse coding %+v", c)
	}
	if src := rev.SourceCoding(); src.Code != "DB64.0" || src.System != SystemICD11 {
		t.Errorf("unexpected reverse source coding %+v", src)
	}
}

func TestTranslate_ReversePrimaryIsEarliest(t *testing.T) {
	s := sampleStore(t)
	res := s.Translate("5A11", SystemICD11, SystemNAMASTE)
	if len(res.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(res.Matches))
	}
	if res.Primary.SourceCode != "NAM-1002" {
		t.Errorf("expected earliest-loaded record as primary, got %s", res.Primary.SourceCode)
	}
}

func TestTranslate_NotFound(t *testing.T) {
	s := sampleStore(t)
	res := s.Translate("NO-SUCH-CODE", SystemNAMASTE, SystemICD11)
	if res.Status != StatusNotFound {
		t.Errorf("expected not-found, got %s", res.Status)
	}
	if res.Primary != nil || len(res.Matches) != 0 {
		t.Error("expected no records for a miss")
	}
	if (res.TargetCoding() != Coding{}) {
		t.Error("expected zero coding for a miss")
	}
}

func TestTranslate_UnsupportedDirection(t *testing.T) {
	s := sampleStore(t)
	tests := []struct{ src, tgt string }{
		{SystemNAMASTE, SystemNAMASTE},
		{SystemICD11, SystemICD11},
		{"http://snomed.info/sct", SystemICD11},
		{SystemNAMASTE, "http://hl7.org/fhir/sid/icd-10"},
		{"", ""},
	}
	for _, tt := range tests {
		res := s.Translate("NAM-1001", tt.src, tt.tgt)
		if res.Status != StatusUnsupportedDirection {
			t.Errorf("%s -> %s: expected unsupported-direction, got %s", tt.src, tt.tgt, res.Status)
		}
		if res.Found() || len(res.Matches) != 0 {
			t.Errorf("%s -> %s: expected no records", tt.src, tt.tgt)
		}
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	s := sampleStore(t)
	a := s.Translate("5A11", SystemICD11, SystemNAMASTE)
	b := s.Translate("5A11", SystemICD11, SystemNAMASTE)
	if len(a.Matches) != len(b.Matches) {
		t.Fatal("expected identical results for identical input")
	}
	for i := range a.Matches {
		if a.Matches[i] != b.Matches[i] {
			t.Errorf("match %d differs between calls", i)
		}
	}
	a.Matches[0] = nil
	if s.Translate("5A11", SystemICD11, SystemNAMASTE).Matches[0] == nil {
		t.Error("mutating a result must not affect the index")
	}
}
