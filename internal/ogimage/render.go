// Package ogimage renders the 1200x630 social preview cards of the site and
// its posts.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Card dimensions.
const (
	Width  = 1200
	Height = 630
)

const (
	padding   = 64
	textWidth = 1000
)

var (
	background = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	accent     = color.RGBA{0xfb, 0x92, 0x3c, 0xff}
	titleInk   = color.NRGBA{0xf8, 0xfa, 0xfc, 0xff}
	bodyInk    = color.NRGBA{0xe2, 0xe8, 0xf0, 0xe6}
	footerInk  = color.NRGBA{0xe2, 0xe8, 0xf0, 0xcc}
)

// Card is the text content of one preview image.
type Card struct {
	Site        string
	Title       string
	Description string
	Host        string
}

// Renderer draws cards. The parsed fonts are shared; faces are created per
// render because opentype faces are not safe for concurrent use.
type Renderer struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// NewRenderer parses the embedded Go fonts.
func NewRenderer() (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("ogimage: parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("ogimage: parse bold font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold}, nil
}

func (r *Renderer) face(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("ogimage: new face: %w", err)
	}
	return face, nil
}

// Render draws c and returns the PNG encoding. Output is deterministic for a
// given card.
func (r *Renderer) Render(c Card) ([]byte, error) {
	siteFace, err := r.face(r.bold, 28)
	if err != nil {
		return nil, err
	}
	defer siteFace.Close()
	titleFace, err := r.face(r.bold, 72)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	bodyFace, err := r.face(r.regular, 34)
	if err != nil {
		return nil, err
	}
	defer bodyFace.Close()
	footerFace, err := r.face(r.regular, 24)
	if err != nil {
		return nil, err
	}
	defer footerFace.Close()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	paintBackground(img)

	y := padding + siteFace.Metrics().Ascent.Ceil()
	drawTracked(img, siteFace, accent, padding, y, strings.ToUpper(c.Site), 7)

	y += siteFace.Metrics().Descent.Ceil() + 32
	lineH := titleFace.Metrics().Height.Ceil() * 11 / 10
	for _, line := range wrap(titleFace, c.Title, textWidth, 3) {
		y += lineH
		drawText(img, titleFace, titleInk, padding, y, line)
	}

	if c.Description != "" {
		y += 24
		lineH = bodyFace.Metrics().Height.Ceil() * 14 / 10
		for _, line := range wrap(bodyFace, c.Description, textWidth, 3) {
			y += lineH
			drawText(img, bodyFace, bodyInk, padding, y, line)
		}
	}

	if c.Host != "" {
		drawText(img, footerFace, footerInk, padding, Height-padding, c.Host)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ogimage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// paintBackground fills the slate background with an orange wash fading
// from the top-left corner.
func paintBackground(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t := (float64(x)/Width + float64(y)/Height) / 2
			a := 0.3 * (1 - t)
			if a <= 0 {
				continue
			}
			img.SetRGBA(x, y, color.RGBA{
				R: blend(background.R, accent.R, a),
				G: blend(background.G, accent.G, a),
				B: blend(background.B, accent.B, a),
				A: 0xff,
			})
		}
	}
}

func blend(dst, src uint8, a float64) uint8 {
	return uint8(float64(dst)*(1-a) + float64(src)*a + 0.5)
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawTracked draws s with extra spacing between letters.
func drawTracked(dst draw.Image, face font.Face, c color.Color, x, y int, s string, tracking int) {
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face, Dot: fixed.P(x, y)}
	for _, r := range s {
		d.DrawString(string(r))
		d.Dot.X += fixed.I(tracking)
	}
}

// wrap breaks s into lines no wider than width. At most maxLines lines are
// returned; overflow is cut with an ellipsis.
func wrap(face font.Face, s string, width, maxLines int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	limit := fixed.I(width)
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if font.MeasureString(face, line+" "+w) <= limit {
			line += " " + w
			continue
		}
		lines = append(lines, line)
		line = w
	}
	lines = append(lines, line)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		runes := []rune(lines[maxLines-1])
		for len(runes) > 0 && font.MeasureString(face, string(runes)+"…") > limit {
			runes = runes[:len(runes)-1]
		}
		lines[maxLines-1] = strings.TrimRight(string(runes), " ") + "…"
	}
	return lines
}
