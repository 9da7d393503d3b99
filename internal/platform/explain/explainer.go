// Package explain produces natural-language explanations of code mappings
// and traditional medicine conditions using a hosted language model.
//
// Explanations are optional enrichment. Callers bound every call with a
// context deadline and treat an error or an empty string as "no explanation".
package explain

import (
	"context"
	"errors"
)

// ErrDisabled is returned by Disabled.Ping.
var ErrDisabled = errors.New("explanation service not configured")

// MappingExplanationRequest describes one resolved mapping to explain.
type MappingExplanationRequest struct {
	SourceCode       string
	SourceDisplay    string
	TargetCode       string
	TargetDisplay    string
	Language         string
	SourceSystemName string
	TargetSystemName string
}

func (r MappingExplanationRequest) withDefaults() MappingExplanationRequest {
	if r.Language == "" {
		r.Language = "en"
	}
	if r.SourceSystemName == "" {
		r.SourceSystemName = "NAMASTE"
	}
	if r.TargetSystemName == "" {
		r.TargetSystemName = "ICD-11"
	}
	return r
}

// DiseaseAnalysisRequest asks for an analysis of a condition from the point
// of view of one traditional medicine system.
type DiseaseAnalysisRequest struct {
	Condition          string
	TraditionalSystem  string
	Language           string
	IncludeMedications bool
}

// Explainer generates explanations. An empty string with a nil error means
// the model had nothing to say.
type Explainer interface {
	ExplainMapping(ctx context.Context, req MappingExplanationRequest) (string, error)
	AnalyzeDisease(ctx context.Context, req DiseaseAnalysisRequest) (string, error)
	Ping(ctx context.Context) error
}

// Disabled is the Explainer used when no model is configured. It never
// produces text.
type Disabled struct{}

func (Disabled) ExplainMapping(context.Context, MappingExplanationRequest) (string, error) {
	return "", nil
}

func (Disabled) AnalyzeDisease(context.Context, DiseaseAnalysisRequest) (string, error) {
	return "", nil
}

func (Disabled) Ping(context.Context) error { return ErrDisabled }
