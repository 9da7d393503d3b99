package fhir

import (
	"encoding/json"
	"net/url"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
)

// TranslateRequest holds the inputs of a $translate call.
type TranslateRequest struct {
	Code         string
	System       string
	TargetSystem string
}

// Parameters is the FHIR Parameters resource used for operation inputs and results.
type Parameters struct {
	ResourceType string      `json:"resourceType"`
	Parameter    []Parameter `json:"parameter"`
}

// Parameter is one named entry of a Parameters resource. Only the value[x]
// types used by $translate are modelled.
type Parameter struct {
	Name         string      `json:"name"`
	ValueBoolean *bool       `json:"valueBoolean,omitempty"`
	ValueString  string      `json:"valueString,omitempty"`
	ValueCode    string      `json:"valueCode,omitempty"`
	ValueURI     string      `json:"valueUri,omitempty"`
	ValueCoding  *Coding     `json:"valueCoding,omitempty"`
	Part         []Parameter `json:"part,omitempty"`
}

// Get returns the first parameter called name.
func (p *Parameters) Get(name string) (*Parameter, bool) {
	for i := range p.Parameter {
		if p.Parameter[i].Name == name {
			return &p.Parameter[i], true
		}
	}
	return nil, false
}

// TranslateResult is the outcome of one translate call in builder form.
type TranslateResult struct {
	Result      bool
	Equivalence string
	Concept     Coding
	Explanation string
}

// TranslateResultFrom converts a resolver outcome into a TranslateResult.
func TranslateResultFrom(res mapping.Resolution, explanation string) TranslateResult {
	if !res.Found() {
		return TranslateResult{}
	}
	c := res.TargetCoding()
	return TranslateResult{
		Result:      true,
		Equivalence: res.Primary.Equivalence.String(),
		Concept:     Coding{System: c.System, Code: c.Code, Display: c.Display},
		Explanation: explanation,
	}
}

// BuildTranslateParameters renders a TranslateResult as a Parameters resource.
// A failed result carries only the result flag.
func BuildTranslateParameters(res TranslateResult) *Parameters {
	ok := res.Result
	params := &Parameters{
		ResourceType: "Parameters",
		Parameter: []Parameter{
			{Name: "result", ValueBoolean: &ok},
		},
	}
	if !ok {
		return params
	}

	concept := res.Concept
	params.Parameter = append(params.Parameter, Parameter{
		Name: "match",
		Part: []Parameter{
			{Name: "equivalence", ValueCode: res.Equivalence},
			{Name: "concept", ValueCoding: &concept},
		},
	})
	if res.Explanation != "" {
		params.Parameter = append(params.Parameter, Parameter{
			Name:        "ai_explanation",
			ValueString: res.Explanation,
		})
	}
	return params
}

// TranslateRequestFromQuery reads $translate inputs from GET query parameters.
func TranslateRequestFromQuery(q url.Values) (*TranslateRequest, *OperationOutcome) {
	req := &TranslateRequest{
		Code:         q.Get("code"),
		System:       q.Get("system"),
		TargetSystem: q.Get("targetsystem"),
	}
	if oo := req.validate(); oo != nil {
		return nil, oo
	}
	return req, nil
}

// ParseTranslateParameters reads $translate inputs from a Parameters body.
// A coding parameter supplies code and system when they are not given
// separately.
func ParseTranslateParameters(body []byte) (*TranslateRequest, *OperationOutcome) {
	var params Parameters
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, NewOperationOutcome(IssueSeverityError, IssueTypeStructure, "invalid JSON: "+err.Error())
	}
	if params.ResourceType != "Parameters" {
		return nil, ValidationOutcome("resourceType", "expected Parameters")
	}

	req := &TranslateRequest{}
	for _, p := range params.Parameter {
		switch p.Name {
		case "code":
			req.Code = firstNonEmpty(p.ValueCode, p.ValueString)
		case "system":
			req.System = firstNonEmpty(p.ValueURI, p.ValueString)
		case "targetsystem":
			req.TargetSystem = firstNonEmpty(p.ValueURI, p.ValueString)
		case "coding":
			if p.ValueCoding != nil {
				if req.Code == "" {
					req.Code = p.ValueCoding.Code
				}
				if req.System == "" {
					req.System = p.ValueCoding.System
				}
			}
		}
	}
	if oo := req.validate(); oo != nil {
		return nil, oo
	}
	return req, nil
}

func (r *TranslateRequest) validate() *OperationOutcome {
	b := NewOutcomeBuilder()
	if r.Code == "" {
		b.AddIssueWithLocation(IssueSeverityError, IssueTypeRequired, "Parameter 'code' is required", "code")
	}
	if r.System == "" {
		b.AddIssueWithLocation(IssueSeverityError, IssueTypeRequired, "Parameter 'system' is required", "system")
	}
	if r.TargetSystem == "" {
		b.AddIssueWithLocation(IssueSeverityError, IssueTypeRequired, "Parameter 'targetsystem' is required", "targetsystem")
	}
	if oo := b.Build(); oo.HasErrors() {
		return oo
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
