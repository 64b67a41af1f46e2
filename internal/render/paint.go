package render

import (
	"image/color"
	"math"

	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// finderSide is the edge length, in modules, of a finder pattern.
const finderSide = 7

// canvas is the drawing surface the painter emits paths to. Both
// *standard.DrawContext and svgCanvas satisfy it.
type canvas interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	ClosePath()
	DrawCircle(x, y, r float64)
	DrawRectangle(x, y, w, h float64)
	SetColor(c color.Color)
	SetFillRuleEvenOdd()
	SetFillRuleWinding()
	Fill()
}

// grid is a captured module matrix without quiet zone.
type grid struct {
	dim int
	set []bool
}

func newGrid(dim int) *grid {
	return &grid{dim: dim, set: make([]bool, dim*dim)}
}

// at reports whether (x, y) is a dark module. Cells outside the symbol are
// light.
func (g *grid) at(x, y int) bool {
	if x < 0 || y < 0 || x >= g.dim || y >= g.dim {
		return false
	}
	return g.set[y*g.dim+x]
}

func (g *grid) put(x, y int, v bool) {
	if x < 0 || y < 0 || x >= g.dim || y >= g.dim {
		return
	}
	g.set[y*g.dim+x] = v
}

// finderAnchor reports whether (x, y) is the top-left cell of one of the
// three finder patterns.
func (g *grid) finderAnchor(x, y int) bool {
	far := g.dim - finderSide
	return (x == 0 && y == 0) || (x == far && y == 0) || (x == 0 && y == far)
}

// inFinder reports whether (x, y) belongs to a finder pattern.
func (g *grid) inFinder(x, y int) bool {
	far := g.dim - finderSide
	inLow := func(v int) bool { return v >= 0 && v < finderSide }
	inHigh := func(v int) bool { return v >= far && v < g.dim }
	return (inLow(x) && inLow(y)) || (inHigh(x) && inLow(y)) || (inLow(x) && inHigh(y))
}

// cellRect is a range of modules, max exclusive.
type cellRect struct {
	x0, y0, x1, y1 int
}

func (r cellRect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

func (r cellRect) empty() bool {
	return r.x1 <= r.x0 || r.y1 <= r.y0
}

// painter draws the styled symbol, one module or finder at a time.
type painter struct {
	grid   *grid
	block  float64
	ox, oy float64
	fg, bg color.RGBA
	module settings.ModuleShape
	corner settings.CornerShape
	// hidden is the logo area; dark modules inside it are not drawn.
	hidden cellRect
}

func newPainter(g *grid, o Options) (*painter, error) {
	switch o.ModuleShape {
	case settings.ModuleSquare, settings.ModuleRounded, settings.ModuleDots:
	default:
		return nil, errors.Wrapf(settings.ErrUnknownValue, "module shape %d", o.ModuleShape)
	}
	switch o.CornerShape {
	case settings.CornerSquare, settings.CornerExtraRounded, settings.CornerDot:
	default:
		return nil, errors.Wrapf(settings.ErrUnknownValue, "corner shape %d", o.CornerShape)
	}
	return &painter{
		grid:   g,
		fg:     o.Foreground,
		bg:     o.Background,
		module: o.ModuleShape,
		corner: o.CornerShape,
	}, nil
}

// cell paints whatever belongs at (x, y). Finder patterns are painted whole
// from their anchor cell.
func (p *painter) cell(c canvas, x, y int) {
	switch {
	case p.grid.finderAnchor(x, y):
		p.finder(c, x, y)
	case p.grid.inFinder(x, y), !p.grid.at(x, y), p.hidden.contains(x, y):
	default:
		p.dataModule(c, x, y)
	}
}

// all paints the full symbol.
func (p *painter) all(c canvas) {
	for y := 0; y < p.grid.dim; y++ {
		for x := 0; x < p.grid.dim; x++ {
			p.cell(c, x, y)
		}
	}
}

func (p *painter) origin(x, y int) (float64, float64) {
	return p.ox + float64(x)*p.block, p.oy + float64(y)*p.block
}

func (p *painter) dataModule(c canvas, x, y int) {
	px, py := p.origin(x, y)
	b := p.block
	c.SetColor(p.fg)

	switch p.module {
	case settings.ModuleSquare:
		c.DrawRectangle(px, py, b, b)
	case settings.ModuleDots:
		c.DrawCircle(px+b/2, py+b/2, b*0.45)
	case settings.ModuleRounded:
		// A corner is rounded only when both modules touching it along an
		// edge are light.
		up, down := p.grid.at(x, y-1), p.grid.at(x, y+1)
		left, right := p.grid.at(x-1, y), p.grid.at(x+1, y)
		r := b / 2
		roundRect(c, px, py, b, b, [4]float64{
			radiusIf(!up && !left, r),
			radiusIf(!up && !right, r),
			radiusIf(!down && !right, r),
			radiusIf(!down && !left, r),
		})
	}
	c.Fill()
}

// finder paints a 7×7 ring with its 3×3 center.
func (p *painter) finder(c canvas, x, y int) {
	px, py := p.origin(x, y)
	b := p.block
	outer, hole, inner := 7*b, 5*b, 3*b

	c.SetColor(p.fg)
	c.SetFillRuleEvenOdd()
	switch p.corner {
	case settings.CornerSquare:
		c.DrawRectangle(px, py, outer, outer)
		c.DrawRectangle(px+b, py+b, hole, hole)
	case settings.CornerExtraRounded:
		roundRect(c, px, py, outer, outer, uniform(2.5*b))
		roundRect(c, px+b, py+b, hole, hole, uniform(1.5*b))
	case settings.CornerDot:
		c.DrawCircle(px+outer/2, py+outer/2, outer/2)
		c.DrawCircle(px+outer/2, py+outer/2, hole/2)
	}
	c.Fill()
	c.SetFillRuleWinding()

	c.SetColor(p.fg)
	switch p.corner {
	case settings.CornerSquare:
		c.DrawRectangle(px+2*b, py+2*b, inner, inner)
	case settings.CornerExtraRounded:
		roundRect(c, px+2*b, py+2*b, inner, inner, uniform(b))
	case settings.CornerDot:
		c.DrawCircle(px+outer/2, py+outer/2, inner/2)
	}
	c.Fill()
}

func radiusIf(ok bool, r float64) float64 {
	if ok {
		return r
	}
	return 0
}

func uniform(r float64) [4]float64 {
	return [4]float64{r, r, r, r}
}

// roundRect adds a closed rectangle path with per-corner radii, clockwise
// from the top-left corner.
func roundRect(c canvas, x, y, w, h float64, r [4]float64) {
	limit := math.Min(w, h) / 2
	for i := range r {
		r[i] = math.Min(r[i], limit)
	}
	tl, tr, br, bl := r[0], r[1], r[2], r[3]

	c.MoveTo(x+tl, y)
	c.LineTo(x+w-tr, y)
	if tr > 0 {
		c.QuadraticTo(x+w, y, x+w, y+tr)
	}
	c.LineTo(x+w, y+h-br)
	if br > 0 {
		c.QuadraticTo(x+w, y+h, x+w-br, y+h)
	}
	c.LineTo(x+bl, y+h)
	if bl > 0 {
		c.QuadraticTo(x, y+h, x, y+h-bl)
	}
	c.LineTo(x, y+tl)
	if tl > 0 {
		c.QuadraticTo(x, y, x+tl, y)
	}
	c.ClosePath()
}

// logoBudget is the share of modules a logo may hide at each level.
func logoBudget(l settings.Level) (float64, error) {
	switch l {
	case settings.LevelLow:
		return 0.07, nil
	case settings.LevelMedium:
		return 0.15, nil
	case settings.LevelQuartile:
		return 0.25, nil
	case settings.LevelHigh:
		return 0.30, nil
	}
	return 0, errors.Wrapf(settings.ErrUnknownValue, "level %d", l)
}

// maxLogoShare caps the logo side relative to the symbol side. It also scales
// the level's budget, so a logo hides at most 2.8%, 6%, 10% or 12% of modules.
const maxLogoShare = 0.4

// hiddenArea returns the centered module rectangle a logo with the given
// width/height aspect may cover. Its area never exceeds maxLogoShare of the
// level's budget and it never reaches into the finder patterns.
func hiddenArea(dim int, l settings.Level, aspect float64) (cellRect, error) {
	budget, err := logoBudget(l)
	if err != nil {
		return cellRect{}, err
	}
	if aspect <= 0 {
		aspect = 1
	}

	maxHidden := int(math.Floor(maxLogoShare * budget * float64(dim*dim)))
	maxAxis := int(math.Floor(maxLogoShare * float64(dim)))
	if limit := dim - 2*finderSide; maxAxis > limit {
		maxAxis = limit
	}

	w, h := 0, 0
	for cw := maxAxis; cw > 0; cw-- {
		ch := int(math.Ceil(float64(cw) / aspect))
		if ch > maxAxis {
			ch = maxAxis
			cw = int(math.Floor(float64(ch) * aspect))
			if cw <= 0 {
				break
			}
		}
		if cw*ch <= maxHidden {
			w, h = cw, ch
			break
		}
	}

	// Odd extents keep the area centered on the odd-sized symbol.
	if w%2 == 0 {
		w--
	}
	if h%2 == 0 {
		h--
	}
	if w <= 0 || h <= 0 {
		return cellRect{}, nil
	}

	x0, y0 := (dim-w)/2, (dim-h)/2
	return cellRect{x0: x0, y0: y0, x1: x0 + w, y1: y0 + h}, nil
}
