package services

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const avatarSize = 128

var avatarPalette = []color.RGBA{
	{R: 0x1a, G: 0xbc, B: 0x9c, A: 0xff},
	{R: 0x34, G: 0x98, B: 0xdb, A: 0xff},
	{R: 0x9b, G: 0x59, B: 0xb6, A: 0xff},
	{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff},
	{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
	{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff},
}

// GenerateAvatar renders a PNG avatar showing the user's uppercase initials
// on a background color derived from the name.
func GenerateAvatar(firstName, lastName string) ([]byte, error) {
	initials := initialsOf(firstName, lastName)

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	bg := avatarPalette[paletteIndex(firstName+lastName)]
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	width := font.MeasureString(face, initials).Ceil()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.P(
			(avatarSize-width)/2,
			(avatarSize+face.Metrics().Ascent.Ceil())/2,
		),
	}
	drawer.DrawString(initials)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func initialsOf(firstName, lastName string) string {
	var b strings.Builder
	for _, name := range []string{firstName, lastName} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(strings.ToUpper(name))
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func paletteIndex(name string) int {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return sum % len(avatarPalette)
}
