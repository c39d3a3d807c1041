package analysis

import (
	"math"
	"strings"
)

type SegmentResult struct {
	Name       string  `json:"name"`
	Weight     int     `json:"weight"`
	Achieved   float64 `json:"achieved"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
	Matched    int     `json:"matched"`
}

// SegmentScore is sum(score)/sum(out_of)*100 over parameters whose category contains keyword
// (case-insensitive). ok is false when no parameter matches.
func SegmentScore(params []Parameter, keyword string) (pct float64, ok bool) {
	r := scoreSegment(params, Segment{Name: keyword, Keyword: keyword})
	return r.Percentage, r.Matched > 0
}

func scoreSegment(params []Parameter, seg Segment) SegmentResult {
	res := SegmentResult{Name: seg.Name, Weight: seg.Weight}
	kw := strings.ToLower(strings.TrimSpace(seg.Keyword))
	if kw == "" {
		return res
	}
	for _, p := range params {
		if !strings.Contains(strings.ToLower(p.Category), kw) {
			continue
		}
		res.Matched++
		res.Achieved += p.Score
		res.Max += p.OutOf
	}
	if res.Max > 0 {
		res.Percentage = round2(res.Achieved / res.Max * 100)
	}
	return res
}

func SegmentResults(params []Parameter, segments []Segment) []SegmentResult {
	out := make([]SegmentResult, 0, len(segments))
	for _, s := range segments {
		out = append(out, scoreSegment(params, s))
	}
	return out
}

// WeightedOverall combines segment percentages by weight, renormalising over segments that matched.
func WeightedOverall(results []SegmentResult) float64 {
	var sum, weights float64
	for _, r := range results {
		if r.Matched == 0 || r.Weight <= 0 {
			continue
		}
		sum += r.Percentage * float64(r.Weight)
		weights += float64(r.Weight)
	}
	if weights == 0 {
		return 0
	}
	return round2(sum / weights)
}

// Contribution is the parameter's share of its weight, or ok=false when it has no weight.
func Contribution(p Parameter) (float64, bool) {
	if p.Weight == nil || p.OutOf <= 0 {
		return 0, false
	}
	return round2(p.Score / p.OutOf * *p.Weight), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
