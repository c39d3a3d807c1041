package analysis

// MockReport is the canned report used when every analysis model fails and the mock fallback is enabled.
func MockReport(meta Metadata, segments []Segment) AnalysisReport {
	params := make([]Parameter, 0, len(segments))
	for _, s := range segments {
		w := float64(s.Weight)
		params = append(params, Parameter{
			Category: s.Name,
			Name:     s.Name + " (not assessed)",
			Score:    0,
			OutOf:    4,
			Weight:   &w,
			Comment:  "Automatic analysis was unavailable for this lecture.",
		})
	}
	r := AnalysisReport{CobReport: CobReport{
		Header: Header{
			Facilitator: "N/A",
			School:      "N/A",
			Grade:       "N/A",
			Section:     "N/A",
			Subject:     "N/A",
			Date:        "N/A",
			SessionType: "Classroom",
		},
		Scores: Scores{
			Summary: "Placeholder report. The AI analysis could not be completed.",
		},
		Parameters:        params,
		Highlights:        []string{},
		OtherObservations: []string{"Generated without AI analysis."},
	}}
	ApplyPrecedence(&r.CobReport.Header, meta)
	return r
}
