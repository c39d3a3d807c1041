package analysis

import (
	"errors"
	"testing"
)

const validReport = `{
  "cob_report": {
    "header": {"facilitator": "Unknown Teacher", "school": "N/A", "grade": "5", "section": "A", "subject": "Science", "date": "2024-01-01", "topic_blm": "Plants", "duration": "", "session_type": "Lecture"},
    "scores": {"overall_percentage": 72.5, "summary": "Solid lesson."},
    "parameters": [
      {"category": "Concepts", "name": "Accuracy", "score": 3, "out_of": 4, "weight": 10, "comment": "Correct definitions."},
      {"category": "Delivery", "name": "Pacing", "score": 2, "out_of": 4, "comment": "Rushed ending."}
    ],
    "highlights": ["Good questioning"]
  }
}`

func TestParseReportFencedAndTrailingComma(t *testing.T) {
	cases := map[string]string{
		"plain":          validReport,
		"fenced":         "```json\n" + validReport + "\n```",
		"bare fence":     "```\n" + validReport + "\n```",
		"prose + fence":  "Here is the report:\n```json\n" + validReport + "\n```\nLet me know.",
		"prose + object": "Sure. " + validReport + " Done.",
		"trailing comma": `{"cob_report":{"header":{"facilitator":"x",},"parameters":[{"category":"Concepts","name":"A","score":1,"out_of":2,},],}}`,
	}
	for name, raw := range cases {
		r, err := ParseReport(raw)
		if err != nil {
			t.Fatalf("%s: ParseReport: %v", name, err)
		}
		if len(r.CobReport.Parameters) == 0 {
			t.Fatalf("%s: no parameters", name)
		}
		if r.CobReport.OtherObservations == nil {
			t.Fatalf("%s: other_observations not normalised", name)
		}
	}
}

func TestParseReportKeepsCommasInsideStrings(t *testing.T) {
	raw := `{"cob_report":{"header":{"facilitator":"x"},"parameters":[{"category":"Concepts","name":"A","score":1,"out_of":2,"comment":"list: a, ]"},],}}`
	r, err := ParseReport(raw)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if got := r.CobReport.Parameters[0].Comment; got != "list: a, ]" {
		t.Fatalf("comment rewritten: %q", got)
	}
}

func TestDropTrailingCommas(t *testing.T) {
	cases := map[string]string{
		`[1,2,]`:              `[1,2]`,
		`{"a":1 , }`:          `{"a":1  }`,
		`{"a":"x,}"}`:         `{"a":"x,}"}`,
		`{"a":"q\",]",}`:      `{"a":"q\",]"}`,
		`{"a":[1,{"b":2,},]}`: `{"a":[1,{"b":2}]}`,
	}
	for in, want := range cases {
		if got := dropTrailingCommas(in); got != want {
			t.Fatalf("dropTrailingCommas(%s): got=%s want=%s", in, got, want)
		}
	}
}

func TestParseReportAcceptsUnwrappedReport(t *testing.T) {
	r, err := ParseReport(`{"header":{"facilitator":"A"},"parameters":[{"category":"Plan","name":"Plan followed","score":1,"out_of":1}]}`)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if r.CobReport.Header.Facilitator != "A" {
		t.Fatalf("header: %+v", r.CobReport.Header)
	}
}

func TestParseReportRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"prose":          "Here is your report!",
		"no header":      `{"cob_report":{"parameters":[{"name":"A","score":1,"out_of":2}]}}`,
		"no parameters":  `{"cob_report":{"header":{},"parameters":[]}}`,
		"unnamed":        `{"cob_report":{"header":{},"parameters":[{"score":1,"out_of":2}]}}`,
		"zero out_of":    `{"cob_report":{"header":{},"parameters":[{"name":"A","score":0,"out_of":0}]}}`,
		"score too high": `{"cob_report":{"header":{},"parameters":[{"name":"A","score":5,"out_of":4}]}}`,
		"string score":   `{"cob_report":{"header":{},"parameters":[{"name":"A","score":"3","out_of":4}]}}`,
		"two objects":    validReport + validReport,
	}
	for name, raw := range cases {
		if _, err := ParseReport(raw); !errors.Is(err, ErrInvalidReport) {
			t.Fatalf("%s: expected ErrInvalidReport, got %v", name, err)
		}
	}
}
