package mapping

import (
	"fmt"
	"strings"
)

// Code system URIs recognized by the resolver.
const (
	SystemNAMASTE = "http://namaste.gov.in/fhir/CodeSystem/namaste"
	SystemICD11   = "http://id.who.int/icd11/mms"
)

// Equivalence is the FHIR R4 ConceptMap equivalence of a mapping.
type Equivalence string

const (
	EquivalenceRelatedTo   Equivalence = "relatedto"
	EquivalenceEquivalent  Equivalence = "equivalent"
	EquivalenceEqual       Equivalence = "equal"
	EquivalenceWider       Equivalence = "wider"
	EquivalenceSubsumes    Equivalence = "subsumes"
	EquivalenceNarrower    Equivalence = "narrower"
	EquivalenceSpecializes Equivalence = "specializes"
	EquivalenceInexact     Equivalence = "inexact"
	EquivalenceUnmatched   Equivalence = "unmatched"
	EquivalenceDisjoint    Equivalence = "disjoint"
)

// Equivalences lists every equivalence value in FHIR declaration order.
var Equivalences = []Equivalence{
	EquivalenceRelatedTo,
	EquivalenceEquivalent,
	EquivalenceEqual,
	EquivalenceWider,
	EquivalenceSubsumes,
	EquivalenceNarrower,
	EquivalenceSpecializes,
	EquivalenceInexact,
	EquivalenceUnmatched,
	EquivalenceDisjoint,
}

// ParseEquivalence returns the Equivalence for s, or an error when s is not
// one of the ten recognized values.
func ParseEquivalence(s string) (Equivalence, error) {
	for _, e := range Equivalences {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unrecognized equivalence %q", s)
}

func (e Equivalence) String() string { return string(e) }

// TraditionalSystem is the traditional medicine system a NAMASTE code belongs to.
type TraditionalSystem string

const (
	SystemAyurveda TraditionalSystem = "Ayurveda"
	SystemSiddha   TraditionalSystem = "Siddha"
	SystemUnani    TraditionalSystem = "Unani"
)

// TraditionalSystems lists the recognized traditional medicine systems.
var TraditionalSystems = []TraditionalSystem{SystemAyurveda, SystemSiddha, SystemUnani}

// ParseTraditionalSystem returns the TraditionalSystem for s. Matching is exact.
func ParseTraditionalSystem(s string) (TraditionalSystem, error) {
	for _, ts := range TraditionalSystems {
		if string(ts) == s {
			return ts, nil
		}
	}
	names := make([]string, len(TraditionalSystems))
	for i, ts := range TraditionalSystems {
		names[i] = string(ts)
	}
	return "", fmt.Errorf("unrecognized traditional medicine system %q (want one of %s)", s, strings.Join(names, ", "))
}

func (ts TraditionalSystem) String() string { return string(ts) }

// Record is a single NAMASTE to ICD-11 equivalence. Records are built by the
// store loader and never modified afterwards.
type Record struct {
	SourceCode    string            `json:"namaste_code"`
	SourceDisplay string            `json:"namaste_display"`
	SourceSystem  TraditionalSystem `json:"namaste_system"`
	TargetCode    string            `json:"icd11_code"`
	TargetDisplay string            `json:"icd11_display"`
	Equivalence   Equivalence       `json:"equivalence"`
	Notes         *string           `json:"notes"`
}

// NotesText returns the notes or an empty string.
func (r *Record) NotesText() string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}

// RawRecord is one undecoded mapping row as it appears in a dataset document
// or a database table. Optional string fields are pointers so that a missing
// field can be told apart from an empty one.
type RawRecord struct {
	NamasteCode    *string `json:"namaste_code"`
	NamasteDisplay *string `json:"namaste_display"`
	NamasteSystem  *string `json:"namaste_system"`
	ICD11Code      *string `json:"icd11_code"`
	ICD11Display   *string `json:"icd11_display"`
	Equivalence    *string `json:"equivalence"`
	Notes          *string `json:"notes,omitempty"`
}

// Dataset is the on-disk document format.
type Dataset struct {
	Metadata map[string]any `json:"metadata"`
	Mappings []RawRecord    `json:"mappings"`
}

// Coding is a code reference within a code system.
type Coding struct {
	System  string
	Code    string
	Display string
}
