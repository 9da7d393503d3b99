package terminology

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/explain"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
	"github.com/ayushbridge/ayushbridge/pkg/pagination"
)

// ErrStoreNotLoaded is returned when no mapping store has been installed.
var ErrStoreNotLoaded = errors.New("mapping store not loaded")

// Config tunes a Service.
type Config struct {
	BaseURL            string
	Version            string
	ExplanationTimeout time.Duration
	AnalysisTimeout    time.Duration
}

// Service answers terminology requests against the current mapping store.
// The store is read through a Holder so a reload never disturbs requests in
// flight.
type Service struct {
	holder    *mapping.Holder
	explainer explain.Explainer
	cfg       Config
	logger    zerolog.Logger

	// dbCheck reports database health when the store is backed by a table.
	dbCheck func(ctx context.Context) string
	now     func() time.Time
}

// NewService creates a Service. A nil explainer means explanations are off.
func NewService(holder *mapping.Holder, explainer explain.Explainer, cfg Config, logger zerolog.Logger) *Service {
	if explainer == nil {
		explainer = explain.Disabled{}
	}
	if cfg.ExplanationTimeout <= 0 {
		cfg.ExplanationTimeout = 8 * time.Second
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 25 * time.Second
	}
	return &Service{
		holder:    holder,
		explainer: explainer,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithDatabaseCheck adds a "database" component to the health report.
func (s *Service) WithDatabaseCheck(check func(ctx context.Context) string) *Service {
	s.dbCheck = check
	return s
}

func (s *Service) store() (*mapping.Store, error) {
	st := s.holder.Load()
	if st == nil {
		return nil, ErrStoreNotLoaded
	}
	return st, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Translate resolves code and, when language is set and the lookup
// succeeded, asks the explainer for a short explanation. The explanation is
// bounded by the explanation timeout; a failure or timeout is logged and the
// result is returned without it.
func (s *Service) Translate(ctx context.Context, code, system, targetSystem, language string) (fhir.TranslateResult, mapping.Resolution, error) {
	st, err := s.store()
	if err != nil {
		return fhir.TranslateResult{}, mapping.Resolution{}, err
	}

	res := st.Translate(code, system, targetSystem)
	if !res.Found() {
		s.logger.Debug().
			Str("code", code).
			Str("system", system).
			Str("target_system", targetSystem).
			Str("status", string(res.Status)).
			Msg("translate miss")
		return fhir.TranslateResultFrom(res, ""), res, nil
	}

	var explanation string
	if language != "" {
		explanation = s.explain(ctx, res, language)
	}
	return fhir.TranslateResultFrom(res, explanation), res, nil
}

func (s *Service) explain(ctx context.Context, res mapping.Resolution, language string) string {
	src, tgt := res.SourceCoding(), res.TargetCoding()
	req := explain.MappingExplanationRequest{
		SourceCode:       src.Code,
		SourceDisplay:    src.Display,
		TargetCode:       tgt.Code,
		TargetDisplay:    tgt.Display,
		Language:         language,
		SourceSystemName: systemName(src.System),
		TargetSystemName: systemName(tgt.System),
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExplanationTimeout)
	defer cancel()

	text, err := s.explainer.ExplainMapping(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("source_code", src.Code).
			Str("target_code", tgt.Code).
			Str("language", language).
			Msg("explanation unavailable")
		return ""
	}
	return text
}

func systemName(uri string) string {
	if uri == mapping.SystemICD11 {
		return "ICD-11"
	}
	return "NAMASTE"
}

// Search returns one page of records matching query plus the total match
// count. No fields means the default display and notes fields.
func (s *Service) Search(query string, page pagination.Params, fields ...mapping.SearchField) (*SearchResponse, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	all := st.Search(query, fields...)
	start, end := page.Window(len(all))
	returned := all[start:end]
	if returned == nil {
		returned = []*mapping.Record{}
	}
	return &SearchResponse{
		Query:           query,
		TotalResults:    len(all),
		ReturnedResults: len(returned),
		Offset:          page.Offset,
		HasMore:         page.HasNext(len(all)),
		Results:         returned,
	}, nil
}

// Statistics reports counts over the current store.
func (s *Service) Statistics() (*StatisticsResponse, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return &StatisticsResponse{
		Service:    ServiceName,
		Version:    s.cfg.Version,
		Timestamp:  s.timestamp(),
		Statistics: st.Statistics(),
	}, nil
}

// ConceptMap builds the predefined concept map with the given id. The bool
// is false for an unknown id.
func (s *Service) ConceptMap(id string) (*fhir.ConceptMap, bool, error) {
	def, ok := fhir.LookupConceptMap(id)
	if !ok {
		return nil, false, nil
	}
	st, err := s.store()
	if err != nil {
		return nil, true, err
	}
	return fhir.BuildConceptMap(def, fhir.ConceptMapElements(st, def.Direction()), s.cfg.BaseURL), true, nil
}

// ConceptMapBundle lists the predefined concept maps without their groups.
func (s *Service) ConceptMapBundle(selfURL string) *fhir.Bundle {
	defs := fhir.PredefinedConceptMaps()
	resources := make([]interface{}, 0, len(defs))
	for _, def := range defs {
		resources = append(resources, fhir.ConceptMapSummary(def, s.cfg.BaseURL))
	}
	return fhir.NewSearchBundle(resources, len(resources), selfURL)
}

// CodeSystem renders the code system with the given id. The bool is false
// for an unknown id.
func (s *Service) CodeSystem(id string) (map[string]interface{}, bool, error) {
	def, ok := fhir.LookupCodeSystem(id)
	if !ok {
		return nil, false, nil
	}
	st, err := s.store()
	if err != nil {
		return nil, true, err
	}
	cs, err := fhir.RenderCodeSystem(fhir.BuildCodeSystem(st, def), def, s.cfg.BaseURL)
	if err != nil {
		return nil, true, fmt.Errorf("render code system %s: %w", id, err)
	}
	return cs, true, nil
}

// Analyze asks the explainer for a disease analysis and attaches the mappings
// whose text mentions the condition. The analysis is optional; the related
// mappings are always returned.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}

	resp := &AnalysisResponse{
		Condition:         req.Condition,
		TraditionalSystem: req.TraditionalSystem,
		Language:          req.Language,
		Timestamp:         s.timestamp(),
	}

	actx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
	text, err := s.explainer.AnalyzeDisease(actx, explain.DiseaseAnalysisRequest{
		Condition:          req.Condition,
		TraditionalSystem:  req.TraditionalSystem,
		Language:           req.Language,
		IncludeMedications: req.IncludeMedications,
	})
	cancel()
	if err != nil {
		s.logger.Warn().Err(err).Str("condition", req.Condition).Msg("disease analysis unavailable")
	} else if text != "" {
		resp.AIAnalysis = &text
		resp.HasAIAnalysis = true
	}

	related := st.Search(req.Condition)
	resp.TotalRelatedCodes = len(related)
	if len(related) > relatedMappingsLimit {
		related = related[:relatedMappingsLimit]
	}
	if related == nil {
		related = []*mapping.Record{}
	}
	resp.RelatedMappings = related
	return resp, nil
}

// Health reports component status. The overall status is "healthy" while a
// mapping store is loaded; the explainer and database only affect their own
// component entries.
func (s *Service) Health(ctx context.Context) *HealthResponse {
	components := map[string]string{}
	status := ComponentHealthy

	if st := s.holder.Load(); st != nil {
		components["mapping_engine"] = ComponentHealthy
		components["total_mappings"] = strconv.Itoa(st.Len())
	} else {
		components["mapping_engine"] = ComponentError
		components["total_mappings"] = "0"
		status = "unhealthy"
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ExplanationTimeout)
	err := s.explainer.Ping(pctx)
	cancel()
	switch {
	case err == nil:
		components["ai_service"] = ComponentHealthy
	case errors.Is(err, explain.ErrDisabled):
		components["ai_service"] = ComponentDisabled
	default:
		s.logger.Warn().Err(err).Msg("explanation service health check failed")
		components["ai_service"] = ComponentError
	}

	if s.dbCheck != nil {
		components["database"] = s.dbCheck(ctx)
	}

	return &HealthResponse{
		Status:     status,
		Version:    s.cfg.Version,
		Timestamp:  s.timestamp(),
		Components: components,
	}
}
