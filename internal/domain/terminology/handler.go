package terminology

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/explain"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
	"github.com/ayushbridge/ayushbridge/pkg/pagination"
)

const minQueryLength = 2

var searchPage = pagination.Bounds{Default: 10, Max: 100}

// Handler exposes the terminology service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the plain API on root and the FHIR routes on
// fhirGroup. ConceptMap reads are served on both.
func (h *Handler) RegisterRoutes(root *echo.Group, fhirGroup *echo.Group) {
	root.GET("/health", h.Health)
	root.POST("/translate", h.Translate)
	root.GET("/ConceptMap/:id", h.GetConceptMap)
	root.GET("/search", h.Search)
	root.GET("/statistics", h.Statistics)
	root.POST("/analyze", h.Analyze)

	fhirGroup.GET("/ConceptMap/$translate", h.FHIRTranslate)
	fhirGroup.POST("/ConceptMap/$translate", h.FHIRTranslate)
	fhirGroup.GET("/ConceptMap", h.SearchConceptMaps)
	fhirGroup.GET("/ConceptMap/:id", h.GetConceptMap)
	fhirGroup.GET("/CodeSystem/:id", h.GetCodeSystem)
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	resp := h.svc.Health(c.Request().Context())
	code := http.StatusOK
	if resp.Status != ComponentHealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// Translate handles POST /translate.
func (h *Handler) Translate(c echo.Context) error {
	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	var missing []string
	if req.Code == "" {
		missing = append(missing, "code")
	}
	if req.System == "" {
		missing = append(missing, "system")
	}
	if req.TargetSystem == "" {
		missing = append(missing, "target_system")
	}
	if len(missing) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required field(s): "+strings.Join(missing, ", "))
	}

	language, err := normalizeLanguage(req.Language)
	if err != nil {
		return err
	}

	result, _, err := h.svc.Translate(c.Request().Context(), req.Code, req.System, req.TargetSystem, language)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, fhir.BuildTranslateParameters(result))
}

// FHIRTranslate handles GET and POST /fhir/ConceptMap/$translate. GET reads
// code, system and targetsystem from the query; POST reads a Parameters body.
// An optional language query parameter requests an explanation.
func (h *Handler) FHIRTranslate(c echo.Context) error {
	var (
		req *fhir.TranslateRequest
		oo  *fhir.OperationOutcome
	)
	if c.Request().Method == http.MethodPost {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("failed to read request body"))
		}
		req, oo = fhir.ParseTranslateParameters(body)
	} else {
		req, oo = fhir.TranslateRequestFromQuery(c.QueryParams())
	}
	if oo != nil {
		return c.JSON(http.StatusBadRequest, oo)
	}

	language, err := normalizeLanguage(c.QueryParam("language"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeCodeInvalid,
			"Unsupported language code: "+c.QueryParam("language")))
	}

	result, _, err := h.svc.Translate(c.Request().Context(), req.Code, req.System, req.TargetSystem, language)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, fhir.BuildTranslateParameters(result))
}

// GetConceptMap handles GET /ConceptMap/:id and GET /fhir/ConceptMap/:id.
// Unknown ids are reported through the error handler, which renders an
// OperationOutcome under /fhir.
func (h *Handler) GetConceptMap(c echo.Context) error {
	id := c.Param("id")
	cm, ok, err := h.svc.ConceptMap(id)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("ConceptMap '%s' not found", id))
	}
	return c.JSON(http.StatusOK, cm)
}

// SearchConceptMaps handles GET /fhir/ConceptMap.
func (h *Handler) SearchConceptMaps(c echo.Context) error {
	selfURL := c.Scheme() + "://" + c.Request().Host + c.Request().URL.RequestURI()
	return c.JSON(http.StatusOK, h.svc.ConceptMapBundle(selfURL))
}

// GetCodeSystem handles GET /fhir/CodeSystem/:id.
func (h *Handler) GetCodeSystem(c echo.Context) error {
	id := c.Param("id")
	cs, ok, err := h.svc.CodeSystem(id)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("CodeSystem '%s' not found", id))
	}
	return c.JSON(http.StatusOK, cs)
}

// Search handles GET /search?q=...&limit=...&offset=...&fields=...
func (h *Handler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if len([]rune(query)) < minQueryLength {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("query parameter 'q' must be at least %d characters", minQueryLength))
	}

	page, err := pagination.Parse(c.QueryParams(), searchPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var fields []mapping.SearchField
	if raw := c.QueryParam("fields"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			f, ok := mapping.ParseSearchField(strings.TrimSpace(name))
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown search field %q", name))
			}
			fields = append(fields, f)
		}
	}

	resp, err := h.svc.Search(query, page, fields...)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Statistics handles GET /statistics.
func (h *Handler) Statistics(c echo.Context) error {
	resp, err := h.svc.Statistics()
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Analyze handles POST /analyze?condition=...&traditional_system=...&language=...&include_medications=...
func (h *Handler) Analyze(c echo.Context) error {
	condition := strings.TrimSpace(c.QueryParam("condition"))
	if condition == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'condition' is required")
	}

	system := c.QueryParam("traditional_system")
	if system == "" {
		system = mapping.SystemAyurveda.String()
	}
	if _, err := mapping.ParseTraditionalSystem(system); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Traditional system must be one of: Ayurveda, Siddha, Unani")
	}

	language := c.QueryParam("language")
	if language == "" {
		language = "en"
	}
	language, err := normalizeLanguage(language)
	if err != nil {
		return err
	}

	includeMeds := true
	if raw := c.QueryParam("include_medications"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "include_medications must be a boolean")
		}
		includeMeds = v
	}

	resp, err := h.svc.Analyze(c.Request().Context(), AnalysisRequest{
		Condition:          condition,
		TraditionalSystem:  system,
		Language:           language,
		IncludeMedications: includeMeds,
	})
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// normalizeLanguage validates an optional language code. Empty stays empty.
func normalizeLanguage(code string) (string, error) {
	if code == "" {
		return "", nil
	}
	norm, err := explain.ValidateLanguage(code)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Unsupported language code: %s", code))
	}
	return norm, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrStoreNotLoaded) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "mapping store not loaded").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
