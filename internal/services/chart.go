package services

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
)

const (
	chartWidth  = 1200
	chartRowH   = 64
	chartTopPad = 70
	chartLabelW = 330
)

// RenderSegmentChart draws one horizontal bar per segment, scaled to 100%.
// Segments with no matching parameters are drawn as "not assessed".
func RenderSegmentChart(results []analysis.SegmentResult) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no segments to chart")
	}
	titleFace, err := fontFace(true, 28)
	if err != nil {
		return nil, err
	}
	labelFace, err := fontFace(false, 22)
	if err != nil {
		return nil, err
	}

	height := chartTopPad + chartRowH*len(results) + 30
	dc := gg.NewContext(chartWidth, height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetFontFace(titleFace)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString("Segment scores", 24, 44)

	barMax := float64(chartWidth - chartLabelW - 130)
	for i, r := range results {
		y := float64(chartTopPad + i*chartRowH)
		dc.SetFontFace(labelFace)
		dc.SetRGB(0.15, 0.15, 0.15)
		dc.DrawStringAnchored(fmt.Sprintf("%s (%d%%)", r.Name, r.Weight), 24, y+chartRowH/2, 0, 0.35)

		dc.SetRGB(0.92, 0.92, 0.92)
		dc.DrawRectangle(chartLabelW, y+14, barMax, chartRowH-28)
		dc.Fill()

		label := "not assessed"
		if r.Matched > 0 {
			dc.SetColor(barColor(r.Percentage))
			dc.DrawRectangle(chartLabelW, y+14, barMax*clampPct(r.Percentage)/100, chartRowH-28)
			dc.Fill()
			label = fmt.Sprintf("%.1f%%", r.Percentage)
		}
		dc.SetRGB(0.15, 0.15, 0.15)
		dc.DrawStringAnchored(label, chartLabelW+barMax+16, y+chartRowH/2, 0, 0.35)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func barColor(pct float64) color.NRGBA {
	switch {
	case pct >= 75:
		return color.NRGBA{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF}
	case pct >= 50:
		return color.NRGBA{R: 0xFF, G: 0xB3, B: 0x00, A: 0xFF}
	default:
		return color.NRGBA{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF}
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
