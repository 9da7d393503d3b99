// Package export writes the loaded mapping index to files: a FHIR ConceptMap
// as JSON, or a spreadsheet for reviewers.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "json" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or xlsx)", s)
}

// Options selects what to export.
type Options struct {
	Format Format
	// ConceptMapID picks the JSON map to write. Ignored for xlsx.
	ConceptMapID string
	BaseURL      string
}

// Write exports store to w.
func Write(w io.Writer, store *mapping.Store, opts Options) error {
	switch opts.Format {
	case FormatJSON, "":
		return WriteConceptMap(w, store, opts.ConceptMapID, opts.BaseURL)
	case FormatXLSX:
		return WriteXLSX(w, store)
	}
	return fmt.Errorf("unknown export format %q", opts.Format)
}

// WriteConceptMap writes one predefined ConceptMap as indented JSON.
func WriteConceptMap(w io.Writer, store *mapping.Store, id, baseURL string) error {
	if id == "" {
		id = "namaste-to-icd11"
	}
	def, ok := fhir.LookupConceptMap(id)
	if !ok {
		return fmt.Errorf("unknown concept map %q", id)
	}

	cm := fhir.BuildConceptMap(def, fhir.ConceptMapElements(store, def.Direction()), baseURL)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cm); err != nil {
		return fmt.Errorf("encode concept map: %w", err)
	}
	return nil
}
