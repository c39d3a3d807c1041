package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"

	"github.com/fogleman/gg"

	types "github.com/yungbote/lecturelens-backend/internal/domain"
)

const avatarSize = 256

var avatarPalette = []color.NRGBA{
	{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF},
	{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF},
	{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF},
	{R: 0x94, G: 0x67, B: 0xBD, A: 0xFF},
	{R: 0x8C, G: 0x56, B: 0x4B, A: 0xFF},
	{R: 0xE3, G: 0x77, B: 0xC2, A: 0xFF},
	{R: 0x17, G: 0xBE, B: 0xCF, A: 0xFF},
	{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF},
}

type AvatarRenderer interface {
	// Render draws a circular initials avatar and returns the PNG plus its background colour as #RRGGBB.
	Render(t *types.Teacher) ([]byte, string, error)
}

type avatarRenderer struct{}

func NewAvatarRenderer() AvatarRenderer { return avatarRenderer{} }

func (avatarRenderer) Render(t *types.Teacher) ([]byte, string, error) {
	if t == nil {
		return nil, "", fmt.Errorf("teacher required")
	}
	bg := avatarColor(t.ID.String() + t.Name)
	face, err := fontFace(true, avatarSize*0.4)
	if err != nil {
		return nil, "", err
	}

	dc := gg.NewContext(avatarSize, avatarSize)
	half := float64(avatarSize) / 2
	dc.DrawCircle(half, half, half)
	dc.Clip()
	dc.SetColor(bg)
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(t.Initials(), half, half, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, "", fmt.Errorf("encode avatar png: %w", err)
	}
	return buf.Bytes(), nrgbaToHex(bg), nil
}

// avatarColor picks a stable palette entry for seed.
func avatarColor(seed string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
