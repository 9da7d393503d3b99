package fhir

import (
	"encoding/json"
	"testing"
)

func TestNewSearchBundle(t *testing.T) {
	resources := []interface{}{
		ConceptMapSummary(predefinedConceptMaps[0], "http://ayushbridge.org/fhir"),
		ConceptMapSummary(predefinedConceptMaps[1], "http://ayushbridge.org/fhir"),
	}

	bundle := NewSearchBundle(resources, 2, "/fhir/ConceptMap")

	if bundle.ResourceType != "Bundle" {
		t.Errorf("expected resourceType Bundle, got %s", bundle.ResourceType)
	}
	if bundle.Type != "searchset" {
		t.Errorf("expected type searchset, got %s", bundle.Type)
	}
	if *bundle.Total != 2 {
		t.Errorf("expected total 2, got %d", *bundle.Total)
	}
	if len(bundle.Entry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(bundle.Entry))
	}
	if bundle.Entry[0].Search == nil || bundle.Entry[0].Search.Mode != "match" {
		t.Error("expected search mode 'match'")
	}
	if bundle.Entry[0].FullURL != "ConceptMap/namaste-to-icd11" {
		t.Errorf("expected fullUrl 'ConceptMap/namaste-to-icd11', got '%s'", bundle.Entry[0].FullURL)
	}
	if bundle.Timestamp == nil {
		t.Error("expected timestamp to be set")
	}
	if len(bundle.Link) != 1 || bundle.Link[0].Relation != "self" || bundle.Link[0].URL != "/fhir/ConceptMap" {
		t.Errorf("expected a single self link, got %+v", bundle.Link)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(bundle.Entry[1].Resource, &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry["id"] != "icd11-to-namaste" {
		t.Errorf("expected second entry icd11-to-namaste, got %v", entry["id"])
	}
}

func TestNewSearchBundle_NoID(t *testing.T) {
	bundle := NewSearchBundle([]interface{}{map[string]string{"resourceType": "ConceptMap"}}, 1, "/fhir/ConceptMap")
	if bundle.Entry[0].FullURL != "" {
		t.Errorf("expected empty fullUrl without id, got %q", bundle.Entry[0].FullURL)
	}
}

func TestNewSearchBundle_Empty(t *testing.T) {
	bundle := NewSearchBundle(nil, 0, "/fhir/ConceptMap")
	if len(bundle.Entry) != 0 {
		t.Errorf("expected 0 entries, got %d", len(bundle.Entry))
	}
	if *bundle.Total != 0 {
		t.Errorf("expected total 0, got %d", *bundle.Total)
	}
}
