package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
)

// svgCanvas records canvas calls as SVG path elements.
type svgCanvas struct {
	sb      strings.Builder
	d       strings.Builder
	fill    color.RGBA
	evenOdd bool
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func (s *svgCanvas) MoveTo(x, y float64) {
	s.d.WriteString("M" + num(x) + " " + num(y))
}

func (s *svgCanvas) LineTo(x, y float64) {
	s.d.WriteString("L" + num(x) + " " + num(y))
}

func (s *svgCanvas) QuadraticTo(cx, cy, x, y float64) {
	s.d.WriteString("Q" + num(cx) + " " + num(cy) + " " + num(x) + " " + num(y))
}

func (s *svgCanvas) ClosePath() {
	s.d.WriteString("Z")
}

func (s *svgCanvas) DrawCircle(x, y, r float64) {
	fmt.Fprintf(&s.d, "M%s %sa%s %s 0 1 0 %s 0a%s %s 0 1 0 %s 0Z",
		num(x-r), num(y), num(r), num(r), num(2*r), num(r), num(r), num(-2*r))
}

func (s *svgCanvas) DrawRectangle(x, y, w, h float64) {
	fmt.Fprintf(&s.d, "M%s %sh%sv%sh%sZ", num(x), num(y), num(w), num(h), num(-w))
}

func (s *svgCanvas) SetColor(c color.Color) {
	s.fill = color.RGBAModel.Convert(c).(color.RGBA)
}

func (s *svgCanvas) SetFillRuleEvenOdd() { s.evenOdd = true }

func (s *svgCanvas) SetFillRuleWinding() { s.evenOdd = false }

func (s *svgCanvas) Fill() {
	if s.d.Len() == 0 {
		return
	}
	s.sb.WriteString(`<path d="` + s.d.String() + `" fill="` + svgColor(s.fill) + `"`)
	if s.fill.A < 255 {
		s.sb.WriteString(` fill-opacity="` + num(float64(s.fill.A)/255) + `"`)
	}
	if s.evenOdd {
		s.sb.WriteString(` fill-rule="evenodd"`)
	}
	s.sb.WriteString(`/>`)
	s.d.Reset()
}

// svgColor formats the color channels the way browsers read them back.
// Alpha is emitted separately. Color values are premultiplied in
// color.RGBA, so translucent colors are unpremultiplied first.
func svgColor(c color.RGBA) string {
	if c.A > 0 && c.A < 255 {
		c.R = uint8(uint32(c.R) * 255 / uint32(c.A))
		c.G = uint8(uint32(c.G) * 255 / uint32(c.A))
		c.B = uint8(uint32(c.B) * 255 / uint32(c.A))
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// writeSVGDocument wraps body in a w×h document with an optional background.
func writeSVGDocument(w io.Writer, width, height int, bg color.RGBA, body string) error {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %d %d" width="%d" height="%d" shape-rendering="geometricPrecision">`,
		width, height, width, height)
	if bg.A > 0 {
		fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"`, width, height, svgColor(bg))
		if bg.A < 255 {
			sb.WriteString(` fill-opacity="` + num(float64(bg.A)/255) + `"`)
		}
		sb.WriteString(`/>`)
	}
	sb.WriteString(body)
	sb.WriteString(`</svg>`)

	_, err := io.WriteString(w, sb.String())
	return err
}
