package fhir

import (
	"strings"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
)

// ConceptMap is the FHIR R4 ConceptMap resource as served by this module.
type ConceptMap struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Name         string            `json:"name"`
	Title        string            `json:"title"`
	Status       string            `json:"status"`
	Description  string            `json:"description,omitempty"`
	SourceURI    string            `json:"sourceUri,omitempty"`
	TargetURI    string            `json:"targetUri,omitempty"`
	Group        []ConceptMapGroup `json:"group,omitempty"`
}

type ConceptMapGroup struct {
	Source  string              `json:"source"`
	Target  string              `json:"target"`
	Element []ConceptMapElement `json:"element"`
}

type ConceptMapElement struct {
	Code    string             `json:"code"`
	Display string             `json:"display,omitempty"`
	Target  []ConceptMapTarget `json:"target"`
}

type ConceptMapTarget struct {
	Code        string `json:"code"`
	Display     string `json:"display,omitempty"`
	Equivalence string `json:"equivalence"`
}

// ConceptMapDefinition describes one of the served concept maps.
type ConceptMapDefinition struct {
	ID          string
	Name        string
	Title       string
	Description string
	SourceURI   string
	TargetURI   string
}

// Direction returns the translation direction the map covers.
func (d ConceptMapDefinition) Direction() mapping.Direction {
	return mapping.ResolveDirection(d.SourceURI, d.TargetURI)
}

var predefinedConceptMaps = []ConceptMapDefinition{
	{
		ID:          "namaste-to-icd11",
		Name:        "NAMASTEtoICD11",
		Title:       "Mapping from NAMASTE to ICD-11",
		Description: "Official mapping between NAMASTE codes for traditional Indian medicine and ICD-11 codes",
		SourceURI:   mapping.SystemNAMASTE,
		TargetURI:   mapping.SystemICD11,
	},
	{
		ID:          "icd11-to-namaste",
		Name:        "ICD11toNAMASTE",
		Title:       "Mapping from ICD-11 to NAMASTE",
		Description: "Reverse mapping between ICD-11 codes and NAMASTE codes for traditional Indian medicine",
		SourceURI:   mapping.SystemICD11,
		TargetURI:   mapping.SystemNAMASTE,
	},
}

// PredefinedConceptMaps returns the served concept map definitions.
func PredefinedConceptMaps() []ConceptMapDefinition {
	out := make([]ConceptMapDefinition, len(predefinedConceptMaps))
	copy(out, predefinedConceptMaps)
	return out
}

// LookupConceptMap returns the definition with the given id.
func LookupConceptMap(id string) (ConceptMapDefinition, bool) {
	for _, d := range predefinedConceptMaps {
		if d.ID == id {
			return d, true
		}
	}
	return ConceptMapDefinition{}, false
}

// ConceptMapElements groups the store contents for one direction.
//
// Forward grouping yields one element per NAMASTE code in load order with a
// single target. Reverse grouping yields one element per distinct ICD-11 code
// in first-seen order with one target per mapped NAMASTE code; the element
// display comes from the first record under that code.
func ConceptMapElements(store *mapping.Store, dir mapping.Direction) []ConceptMapElement {
	switch dir {
	case mapping.DirectionForward:
		records := store.Records()
		elements := make([]ConceptMapElement, 0, len(records))
		for _, rec := range records {
			elements = append(elements, ConceptMapElement{
				Code:    rec.SourceCode,
				Display: rec.SourceDisplay,
				Target: []ConceptMapTarget{{
					Code:        rec.TargetCode,
					Display:     rec.TargetDisplay,
					Equivalence: rec.Equivalence.String(),
				}},
			})
		}
		return elements

	case mapping.DirectionReverse:
		codes := store.TargetCodes()
		elements := make([]ConceptMapElement, 0, len(codes))
		for _, code := range codes {
			records := store.ByTarget(code)
			el := ConceptMapElement{
				Code:    code,
				Display: records[0].TargetDisplay,
				Target:  make([]ConceptMapTarget, 0, len(records)),
			}
			for _, rec := range records {
				el.Target = append(el.Target, ConceptMapTarget{
					Code:        rec.SourceCode,
					Display:     rec.SourceDisplay,
					Equivalence: rec.Equivalence.String(),
				})
			}
			elements = append(elements, el)
		}
		return elements
	}
	return nil
}

// BuildConceptMap assembles a ConceptMap with a single group holding elements.
func BuildConceptMap(def ConceptMapDefinition, elements []ConceptMapElement, baseURL string) *ConceptMap {
	if elements == nil {
		elements = []ConceptMapElement{}
	}
	cm := ConceptMapSummary(def, baseURL)
	cm.Group = []ConceptMapGroup{{
		Source:  def.SourceURI,
		Target:  def.TargetURI,
		Element: elements,
	}}
	return cm
}

// ConceptMapSummary returns the ConceptMap header without any group.
func ConceptMapSummary(def ConceptMapDefinition, baseURL string) *ConceptMap {
	return &ConceptMap{
		ResourceType: "ConceptMap",
		ID:           def.ID,
		URL:          strings.TrimRight(baseURL, "/") + "/ConceptMap/" + def.ID,
		Name:         def.Name,
		Title:        def.Title,
		Status:       "active",
		Description:  def.Description,
		SourceURI:    def.SourceURI,
		TargetURI:    def.TargetURI,
	}
}
