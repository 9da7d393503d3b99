package explain

import (
	"strings"
	"text/template"
)

var explanationTmpl = template.Must(template.New("explanation").Parse(`
You are a medical terminology expert specializing in traditional medicine and modern healthcare coding systems.

Task: Explain the medical relationship between a {{.SourceSystemName}} code and its corresponding {{.TargetSystemName}} code in {{.LanguageName}}.

Source Code: {{.SourceCode}} - "{{.SourceDisplay}}"
Target Code: {{.TargetCode}} - "{{.TargetDisplay}}"

Guidelines:
1. Write a clear, concise explanation (2-3 sentences maximum)
2. Focus on the medical/clinical connection between the concepts
3. Use terminology appropriate for healthcare professionals
4. If traditional medicine terms are involved, briefly explain the concept
5. Maintain medical accuracy and cultural sensitivity
6. Write entirely in {{.LanguageName}}

Example format:
"[Source concept] is a traditional medicine term that corresponds to [target concept] because [brief medical explanation]."

Generate the explanation now:
`))

var analysisTmpl = template.Must(template.New("analysis").Parse(`
You are a highly skilled medical practitioner with expertise in {{.System}} ({{.SystemName}}) medicine and modern healthcare systems. You are fluent in {{.LanguageName}} and specialize in medical communication.

CRITICAL LANGUAGE REQUIREMENT:
- Respond ENTIRELY in {{.LanguageName}}
- Do NOT mix languages or use English unless specifically requested
- Use appropriate medical terminology in {{.LanguageName}}
- All section headers, explanations, and content must be in {{.LanguageName}}

Task: Provide comprehensive medical analysis of "{{.Condition}}" integrating {{.System}} and modern medical knowledge.

Structure your response in {{.LanguageName}} with these sections:

1. **{{.System}} Understanding**: Traditional perspective on this condition
2. **Modern Medical Perspective**: Current medical understanding and classification
3. **Pathophysiology**: Disease mechanisms from both viewpoints
4. **Symptoms & Signs**: Clinical manifestations and diagnostic signs
{{- if .IncludeMedications}}
5. **{{.System}} Treatments**: Traditional medicines, herbs, and therapeutic approaches
6. **Dietary Recommendations**: Dietary guidelines according to {{.System}}
7. **Lifestyle Modifications**: Lifestyle changes recommended in {{.System}}
{{- end}}
8. **Prognosis & Management**: Treatment outcomes and long-term management

Response Requirements:
- Write completely in {{.LanguageName}}
- Use medical terminology appropriate for {{.LanguageName}}
- Maintain professional healthcare tone in {{.LanguageName}}
- Include cultural context for traditional medicine concepts
- Provide evidence-based information
- 700-1000 words in {{.LanguageName}}
- Be comprehensive yet accessible

Condition: "{{.Condition}}"
Medical System: {{.System}} ({{.SystemName}})
Language: {{.LanguageName}}

Begin detailed analysis in {{.LanguageName}}:
`))

const pingPrompt = "Test connection. Respond with 'OK'."

func explanationPrompt(req MappingExplanationRequest) (string, error) {
	req = req.withDefaults()
	data := struct {
		MappingExplanationRequest
		LanguageName string
	}{req, LanguageName(req.Language)}

	var b strings.Builder
	if err := explanationTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func analysisPrompt(req DiseaseAnalysisRequest) (string, error) {
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	system := req.TraditionalSystem
	if system == "" {
		system = "Ayurveda"
	}
	data := struct {
		Condition          string
		System             string
		SystemName         string
		LanguageName       string
		IncludeMedications bool
	}{
		Condition:          req.Condition,
		System:             system,
		SystemName:         traditionalSystemName(system, lang),
		LanguageName:       nativeLanguageName(lang),
		IncludeMedications: req.IncludeMedications,
	}

	var b strings.Builder
	if err := analysisTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
