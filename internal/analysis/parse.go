package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidReport = errors.New("invalid report")

type wireCob struct {
	Header            *Header     `json:"header"`
	Scores            Scores      `json:"scores"`
	Parameters        []Parameter `json:"parameters"`
	Highlights        []string    `json:"highlights"`
	OtherObservations []string    `json:"other_observations"`
}

type wireReport struct {
	CobReport *wireCob `json:"cob_report"`
	wireCob
}

// ParseReport strips a markdown fence, decodes the report, retries once with trailing commas
// removed, and validates the result.
func ParseReport(raw string) (AnalysisReport, error) {
	body := StripFence(raw)
	if body == "" {
		return AnalysisReport{}, fmt.Errorf("%w: empty response", ErrInvalidReport)
	}
	w, err := decodeReport(body)
	if err != nil {
		sanitized := dropTrailingCommas(body)
		if sanitized == body {
			return AnalysisReport{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
		w, err = decodeReport(sanitized)
		if err != nil {
			return AnalysisReport{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
	}

	cob := w.CobReport
	if cob == nil && w.Header != nil {
		c := w.wireCob
		cob = &c
	}
	if cob == nil {
		return AnalysisReport{}, fmt.Errorf("%w: missing cob_report", ErrInvalidReport)
	}
	report := AnalysisReport{CobReport: CobReport{
		Scores:            cob.Scores,
		Parameters:        cob.Parameters,
		Highlights:        cob.Highlights,
		OtherObservations: cob.OtherObservations,
	}}
	if cob.Header != nil {
		report.CobReport.Header = *cob.Header
	}
	if err := validateReport(cob.Header != nil, report); err != nil {
		return AnalysisReport{}, err
	}
	normalizeReport(&report)
	return report, nil
}

func decodeReport(body string) (wireReport, error) {
	var w wireReport
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&w); err != nil {
		return wireReport{}, err
	}
	if dec.More() {
		return wireReport{}, errors.New("unexpected data after report object")
	}
	return w, nil
}

func validateReport(hasHeader bool, r AnalysisReport) error {
	if !hasHeader {
		return fmt.Errorf("%w: missing header", ErrInvalidReport)
	}
	if len(r.CobReport.Parameters) == 0 {
		return fmt.Errorf("%w: no parameters", ErrInvalidReport)
	}
	for i, p := range r.CobReport.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: parameter %d has no name", ErrInvalidReport, i)
		}
		if p.OutOf <= 0 {
			return fmt.Errorf("%w: parameter %q out_of must be positive", ErrInvalidReport, p.Name)
		}
		if p.Score < 0 || p.Score > p.OutOf {
			return fmt.Errorf("%w: parameter %q score %.2f outside 0..%.2f", ErrInvalidReport, p.Name, p.Score, p.OutOf)
		}
	}
	return nil
}

func normalizeReport(r *AnalysisReport) {
	if r.CobReport.Highlights == nil {
		r.CobReport.Highlights = []string{}
	}
	if r.CobReport.OtherObservations == nil {
		r.CobReport.OtherObservations = []string{}
	}
	for i := range r.CobReport.Parameters {
		p := &r.CobReport.Parameters[i]
		p.Category = strings.TrimSpace(p.Category)
		p.Name = strings.TrimSpace(p.Name)
	}
}

// StripFence returns the body of the first ```json ... ``` block. Without a fence, any prose around
// the outermost braces is dropped.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the info string (```json)
			if !strings.ContainsAny(s[:nl], "{[") {
				s = s[nl+1:]
			}
		}
		if j := strings.LastIndex(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") {
		if i, j := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); i >= 0 && j > i {
			s = s[i : j+1]
		}
	}
	return s
}

// dropTrailingCommas removes commas directly before a closing brace or bracket, leaving string
// literals untouched.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
