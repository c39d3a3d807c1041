package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  {\"a\":"), genai.Text("1}  ")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := responseText(resp); got != `{"a":1}` {
		t.Fatalf("responseText: %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("nil response: %q", got)
	}
	empty := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}, {Content: &genai.Content{Parts: []genai.Part{genai.Text("second")}}}}}
	if got := responseText(empty); got != "second" {
		t.Fatalf("skip empty candidate: %q", got)
	}
}

func TestMapState(t *testing.T) {
	cases := map[genai.FileState]FileState{
		genai.FileStateActive:      FileStateActive,
		genai.FileStateProcessing:  FileStateProcessing,
		genai.FileStateFailed:      FileStateFailed,
		genai.FileStateUnspecified: FileStateUnknown,
	}
	for in, want := range cases {
		if got := mapState(in); got != want {
			t.Fatalf("mapState(%v): got=%s want=%s", in, got, want)
		}
	}
	if toRemoteFile(nil) != nil {
		t.Fatalf("toRemoteFile(nil) should be nil")
	}
}
