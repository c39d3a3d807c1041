package analysis

import (
	"strings"
	"testing"
)

func TestEmbeddedConfigIsValid(t *testing.T) {
	cfg, err := ParseConfig(mustEmbedded(t))
	if err != nil {
		t.Fatalf("embedded config: %v", err)
	}
	if len(cfg.TranscriptModels()) == 0 || len(cfg.AnalysisModels()) == 0 {
		t.Fatalf("model lists empty: %+v", cfg.Models)
	}
	if len(cfg.Segments) != 6 {
		t.Fatalf("segments: got %d", len(cfg.Segments))
	}
}

func TestParseConfigRejects(t *testing.T) {
	cases := map[string]string{
		"no models":    "models: {transcript: [], analysis: [a]}\nsegments: [{name: A, weight: 100}]",
		"bad weights":  "models: {transcript: [a], analysis: [a]}\nsegments: [{name: A, weight: 60}]",
		"dup segments": "models: {transcript: [a], analysis: [a]}\nsegments: [{name: A, weight: 50}, {name: a, weight: 50}]",
	}
	for name, raw := range cases {
		if _, err := ParseConfig([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseConfigDefaultsKeyword(t *testing.T) {
	cfg, err := ParseConfig([]byte("models: {transcript: [a, a, ' b '], analysis: [c]}\nsegments: [{name: Delivery, weight: 100}]"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Segments[0].Keyword != "Delivery" {
		t.Fatalf("keyword default: %q", cfg.Segments[0].Keyword)
	}
	if strings.Join(cfg.TranscriptModels(), ",") != "a,b" {
		t.Fatalf("models not cleaned: %v", cfg.TranscriptModels())
	}
}

func mustEmbedded(t *testing.T) []byte {
	t.Helper()
	data, err := configFS.ReadFile("analysis.yaml")
	if err != nil {
		t.Fatalf("read embedded: %v", err)
	}
	return data
}
