package terminology

import "github.com/ayushbridge/ayushbridge/internal/mapping"

// ServiceName is reported by /statistics.
const ServiceName = "AyushBridge"

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Code         string `json:"code"`
	System       string `json:"system"`
	TargetSystem string `json:"target_system"`
	Language     string `json:"language,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query           string            `json:"query"`
	TotalResults    int               `json:"total_results"`
	ReturnedResults int               `json:"returned_results"`
	Offset          int               `json:"offset,omitempty"`
	HasMore         bool              `json:"has_more"`
	Results         []*mapping.Record `json:"results"`
}

// StatisticsResponse is the body of GET /statistics.
type StatisticsResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	mapping.Statistics
}

// AnalysisRequest holds the query of POST /analyze.
type AnalysisRequest struct {
	Condition          string
	TraditionalSystem  string
	Language           string
	IncludeMedications bool
}

// AnalysisResponse is the body of POST /analyze.
type AnalysisResponse struct {
	Condition         string            `json:"condition"`
	TraditionalSystem string            `json:"traditional_system"`
	Language          string            `json:"language"`
	Timestamp         string            `json:"timestamp"`
	AIAnalysis        *string           `json:"ai_analysis"`
	RelatedMappings   []*mapping.Record `json:"related_mappings"`
	HasAIAnalysis     bool              `json:"has_ai_analysis"`
	TotalRelatedCodes int               `json:"total_related_codes"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Component health values.
const (
	ComponentHealthy  = "healthy"
	ComponentError    = "error"
	ComponentDisabled = "disabled"
)

// relatedMappingsLimit caps related_mappings in an analysis response.
const relatedMappingsLimit = 5
