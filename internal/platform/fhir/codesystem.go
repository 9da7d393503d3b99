package fhir

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofhir/fhir/r4"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
)

// CodeSystemDefinition describes one side of the mapping index exposed as a
// CodeSystem resource.
type CodeSystemDefinition struct {
	ID          string
	URL         string
	Name        string
	Title       string
	Description string
	Reverse     bool // list ICD-11 codes instead of NAMASTE codes
}

var codeSystems = []CodeSystemDefinition{
	{
		ID:          "namaste",
		URL:         mapping.SystemNAMASTE,
		Name:        "NAMASTE",
		Title:       "National AYUSH Morbidity and Standardized Terminologies Electronic",
		Description: "NAMASTE codes for Ayurveda, Siddha and Unani present in the loaded mapping set",
	},
	{
		ID:          "icd11",
		URL:         mapping.SystemICD11,
		Name:        "ICD11MMS",
		Title:       "ICD-11 for Mortality and Morbidity Statistics",
		Description: "ICD-11 MMS codes referenced by the loaded mapping set",
		Reverse:     true,
	},
}

// LookupCodeSystem returns the definition with the given id.
func LookupCodeSystem(id string) (CodeSystemDefinition, bool) {
	for _, d := range codeSystems {
		if d.ID == id {
			return d, true
		}
	}
	return CodeSystemDefinition{}, false
}

// BuildCodeSystem lists the distinct codes on one side of the store. The
// store only holds mapped codes, so the result is a fragment of the full
// terminology.
func BuildCodeSystem(store *mapping.Store, def CodeSystemDefinition) *r4.CodeSystem {
	url := def.URL
	cs := &r4.CodeSystem{Url: &url}

	if def.Reverse {
		for _, code := range store.TargetCodes() {
			display := store.ByTarget(code)[0].TargetDisplay
			cs.Concept = append(cs.Concept, r4.CodeSystemConcept{Code: &code, Display: &display})
		}
		return cs
	}

	for _, rec := range store.Records() {
		code, display := rec.SourceCode, rec.SourceDisplay
		cs.Concept = append(cs.Concept, r4.CodeSystemConcept{Code: &code, Display: &display})
	}
	return cs
}

// RenderCodeSystem serializes cs and fills in the resource header fields.
func RenderCodeSystem(cs *r4.CodeSystem, def CodeSystemDefinition, baseURL string) (map[string]interface{}, error) {
	raw, err := json.Marshal(cs)
	if err != nil {
		return nil, fmt.Errorf("marshal CodeSystem %s: %w", def.ID, err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode CodeSystem %s: %w", def.ID, err)
	}

	out["resourceType"] = "CodeSystem"
	out["id"] = def.ID
	out["name"] = def.Name
	out["title"] = def.Title
	out["description"] = def.Description
	out["status"] = "active"
	out["content"] = "fragment"
	out["caseSensitive"] = true
	out["count"] = len(cs.Concept)
	out["meta"] = map[string]interface{}{
		"source": strings.TrimRight(baseURL, "/") + "/CodeSystem/" + def.ID,
	}
	return out, nil
}
