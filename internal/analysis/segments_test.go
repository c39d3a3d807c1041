package analysis

import "testing"

func TestSegmentScoreSubstringMatch(t *testing.T) {
	params := []Parameter{
		{Category: "Concepts A", Name: "a", Score: 2, OutOf: 2},
		{Category: "Concepts B", Name: "b", Score: 0, OutOf: 2},
		{Category: "Delivery", Name: "c", Score: 4, OutOf: 4},
	}
	got, ok := SegmentScore(params, "Concepts")
	if !ok || got != 50 {
		t.Fatalf("SegmentScore: got=%v ok=%v want 50", got, ok)
	}
	if _, ok := SegmentScore(params, "Language"); ok {
		t.Fatalf("SegmentScore: expected no match for Language")
	}
}

func TestWeightedOverallSkipsUnmatchedSegments(t *testing.T) {
	segments := []Segment{
		{Name: "Concepts", Keyword: "Concept", Weight: 50},
		{Name: "Delivery", Keyword: "Delivery", Weight: 25},
		{Name: "Language", Keyword: "Language", Weight: 25},
	}
	params := []Parameter{
		{Category: "Concept clarity", Name: "a", Score: 1, OutOf: 2},
		{Category: "Delivery", Name: "b", Score: 2, OutOf: 2},
	}
	results := SegmentResults(params, segments)
	if len(results) != 3 || results[2].Matched != 0 {
		t.Fatalf("SegmentResults: %+v", results)
	}
	// (50*50 + 100*25) / 75
	if got := WeightedOverall(results); got != 66.67 {
		t.Fatalf("WeightedOverall: got=%v", got)
	}
}

func TestContribution(t *testing.T) {
	w := 10.0
	if got, ok := Contribution(Parameter{Score: 3, OutOf: 4, Weight: &w}); !ok || got != 7.5 {
		t.Fatalf("Contribution: got=%v ok=%v", got, ok)
	}
	if _, ok := Contribution(Parameter{Score: 3, OutOf: 4}); ok {
		t.Fatalf("Contribution without weight should not be ok")
	}
}
