package analysis

// Upload field names for the auxiliary lecture documents.
const (
	FieldCobParams       = "cobParams"
	FieldReadingMaterial = "readingMaterial"
	FieldLessonPlan      = "lessonPlan"
)

var AuxFields = []string{FieldCobParams, FieldReadingMaterial, FieldLessonPlan}

const SentimentNotComputed = "not_computed"

// ExtractionResult is the text pulled from one stored document.
// Text is never empty: a failed extraction carries a placeholder and Failed=true.
type ExtractionResult struct {
	Field  string `json:"field"`
	Path   string `json:"path"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Failed bool   `json:"failed,omitempty"`
}

type TranscriptResult struct {
	Transcription string `json:"transcription"`
	Sentiment     string `json:"sentiment"`
	Model         string `json:"model"`
}

// AnalysisReport is the persisted report document (Report.analysis_data).
type AnalysisReport struct {
	CobReport CobReport `json:"cob_report"`
}

type CobReport struct {
	Header            Header      `json:"header"`
	Scores            Scores      `json:"scores"`
	Parameters        []Parameter `json:"parameters"`
	Highlights        []string    `json:"highlights"`
	OtherObservations []string    `json:"other_observations"`
}

type Header struct {
	Facilitator string `json:"facilitator"`
	School      string `json:"school"`
	Grade       string `json:"grade"`
	Section     string `json:"section"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	TopicBLM    string `json:"topic_blm"`
	Duration    string `json:"duration"`
	SessionType string `json:"session_type"`
}

type Scores struct {
	OverallPercentage float64 `json:"overall_percentage"`
	Summary           string  `json:"summary"`
}

type Parameter struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	OutOf    float64  `json:"out_of"`
	Weight   *float64 `json:"weight,omitempty"`
	Comment  string   `json:"comment"`
}

// Metadata is caller-supplied ground truth about the lecture.
type Metadata struct {
	Facilitator string
	School      string
	Grade       string
	Section     string
	Subject     string
	Date        string
}

// Outcome is what the analysis step hands to persistence.
type Outcome struct {
	Report        AnalysisReport
	Model         string
	GeneratedByAI bool
}
