package analysis

import (
	"bytes"
	"strings"
	"text/template"
)

const TranscriptPrompt = `Transcribe this classroom lecture audio verbatim.
Label speakers as "Teacher" or "Student" when it is clear who is speaking.
Keep the original language. Do not summarise, translate or add commentary.
Return only the transcript text.`

type PromptDocument struct {
	Label string
	Text  string
}

type PromptInput struct {
	Meta       Metadata
	Transcript string
	Documents  []PromptDocument
	Rubric     string
	Segments   []Segment
}

var analysisTmpl = template.Must(template.New("analysis").Option("missingkey=zero").Parse(`You are an experienced classroom observer preparing a Classroom Observation (COB) report.

Lecture details (authoritative; copy them into the header as given):
- Facilitator: {{.Meta.Facilitator}}
- School: {{.Meta.School}}
- Grade: {{.Meta.Grade}}
- Section: {{.Meta.Section}}
- Subject: {{.Meta.Subject}}
- Date: {{.Meta.Date}}

Score every observation parameter. Each parameter's category must name one of these segments:
{{range .Segments}}- {{.Name}} ({{.Weight}}%)
{{end}}
{{- if .Rubric}}
Grade rubric:
"""
{{.Rubric}}
"""
{{end}}
{{- range .Documents}}
{{.Label}}:
"""
{{.Text}}
"""
{{end}}
Lecture transcript:
"""
{{.Transcript}}
"""

Respond with a single JSON object and nothing else, shaped exactly like:
{
  "cob_report": {
    "header": {"facilitator": "", "school": "", "grade": "", "section": "", "subject": "", "date": "", "topic_blm": "", "duration": "", "session_type": ""},
    "scores": {"overall_percentage": 0, "summary": ""},
    "parameters": [{"category": "", "name": "", "score": 0, "out_of": 0, "weight": 0, "comment": ""}],
    "highlights": [""],
    "other_observations": [""]
  }
}
Rules: scores are numbers with 0 <= score <= out_of and out_of > 0. Every comment cites evidence from the transcript.`))

var documentLabels = map[string]string{
	FieldCobParams:       "COB parameters",
	FieldReadingMaterial: "Reading material",
	FieldLessonPlan:      "Lesson plan",
}

// PromptDocuments labels extraction results in upload-field order, skipping empty ones.
func PromptDocuments(results []ExtractionResult) []PromptDocument {
	byField := map[string]ExtractionResult{}
	for _, r := range results {
		byField[r.Field] = r
	}
	out := make([]PromptDocument, 0, len(results))
	for _, f := range AuxFields {
		r, ok := byField[f]
		if !ok || strings.TrimSpace(r.Text) == "" {
			continue
		}
		out = append(out, PromptDocument{Label: documentLabels[f], Text: r.Text})
	}
	return out
}

func BuildAnalysisPrompt(in PromptInput) string {
	var b bytes.Buffer
	_ = analysisTmpl.Execute(&b, in)
	return strings.TrimSpace(b.String())
}
