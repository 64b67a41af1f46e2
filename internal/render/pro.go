package render

import (
	"bytes"
	"context"
	"html"
	"image"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// logoMargin is the gap between a logo and the surrounding modules at the
// preview size. It scales with the symbol.
const logoMargin = 10

// maxBlockWidth is the largest module size the standard writer accepts.
const maxBlockWidth = math.MaxUint8

// ProRenderer draws styled symbols: module and finder shapes, a margin inside
// the requested dimensions and a logo sized to the error-correction budget.
type ProRenderer struct{}

func NewProRenderer() *ProRenderer {
	return &ProRenderer{}
}

// LevelOption maps l to the encoder's error-correction option.
func LevelOption(l settings.Level) (qrcode.EncodeOption, error) {
	switch l {
	case settings.LevelLow:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow), nil
	case settings.LevelMedium:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium), nil
	case settings.LevelQuartile:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart), nil
	case settings.LevelHigh:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest), nil
	}
	return nil, errors.Wrapf(settings.ErrUnknownValue, "level %d", l)
}

// matrixCapture is a qrcode.Writer that records the module matrix.
type matrixCapture struct {
	grid *grid
}

func (m *matrixCapture) Write(mat qrcode.Matrix) error {
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		m.grid.put(x, y, v.IsSet())
	})
	return nil
}

func (m *matrixCapture) Close() error { return nil }

// bufferCloser lets the standard writer encode into memory.
type bufferCloser struct {
	*bytes.Buffer
}

func (bufferCloser) Close() error { return nil }

func encodePro(data string, l settings.Level) (*qrcode.QRCode, *grid, error) {
	opt, err := LevelOption(l)
	if err != nil {
		return nil, nil, err
	}
	qrc, err := qrcode.NewWith(settings.EffectiveData(data), opt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode pro symbol")
	}

	capture := &matrixCapture{grid: newGrid(qrc.Dimension())}
	if err := qrc.Save(capture); err != nil {
		return nil, nil, errors.Wrap(err, "capture matrix")
	}
	return qrc, capture.grid, nil
}

// proLayout is the geometry shared by the raster and vector outputs.
type proLayout struct {
	width, height int
	side          int
	margin        int
	dim           int
	hidden        cellRect
	logo          image.Image
}

func planPro(ctx context.Context, o Options, dim int) (*proLayout, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "%dx%d", o.Width, o.Height)
	}
	if o.Margin < 0 {
		return nil, errors.Wrapf(compose.ErrNegativeMargin, "margin %d", o.Margin)
	}
	side := min(o.Width, o.Height) - 2*o.Margin
	if side < 1 {
		return nil, errors.Wrapf(ErrInvalidSize, "margin %d leaves no room in %dx%d", o.Margin, o.Width, o.Height)
	}

	lay := &proLayout{
		width:  o.Width,
		height: o.Height,
		side:   side,
		margin: o.Margin,
		dim:    dim,
	}
	if o.Logo == nil {
		return lay, nil
	}

	decoded, err := o.Logo.Decode()
	if err != nil {
		logger.Ctx(ctx).Warn("pro logo skipped",
			zap.String("logo", o.Logo.Name),
			zap.Error(err),
		)
		return lay, nil
	}
	hidden, err := hiddenArea(dim, o.Level, logo.Aspect(decoded))
	if err != nil {
		return nil, err
	}
	if !hidden.empty() {
		lay.hidden = hidden
		lay.logo = decoded
	}
	return lay, nil
}

// logoBox is the pixel rectangle, relative to the symbol, the logo is fitted
// into. It is empty when there is no logo or no room for one.
func (l *proLayout) logoBox() image.Rectangle {
	if l.logo == nil {
		return image.Rectangle{}
	}
	px := func(c int) int { return c * l.side / l.dim }
	gap := int(math.Round(float64(logoMargin) * float64(l.side) / float64(settings.ProPreviewSize)))
	r := image.Rect(px(l.hidden.x0), px(l.hidden.y0), px(l.hidden.x1), px(l.hidden.y1)).Inset(gap)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}

// proShape adapts the painter to the standard writer's per-cell callbacks.
type proShape struct {
	p *painter
}

func (s *proShape) locate(ctx *standard.DrawContext) (int, int) {
	x, y := ctx.UpperLeft()
	return int(math.Round(x / s.p.block)), int(math.Round(y / s.p.block))
}

func (s *proShape) Draw(ctx *standard.DrawContext) {
	x, y := s.locate(ctx)
	s.p.cell(ctx, x, y)
}

func (s *proShape) DrawFinder(ctx *standard.DrawContext) {
	x, y := s.locate(ctx)
	s.p.cell(ctx, x, y)
}

func (r *ProRenderer) Render(ctx context.Context, o Options) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qrc, g, err := encodePro(o.Data, o.Level)
	if err != nil {
		return nil, err
	}
	lay, err := planPro(ctx, o, g.dim)
	if err != nil {
		return nil, err
	}
	p, err := newPainter(g, o)
	if err != nil {
		return nil, err
	}
	p.hidden = lay.hidden

	block := int(math.Ceil(float64(lay.side) / float64(g.dim)))
	block = max(1, min(block, maxBlockWidth))
	p.block = float64(block)

	var buf bytes.Buffer
	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(uint8(block)),
		standard.WithBorderWidth(0),
		standard.WithFgColor(o.Foreground),
		standard.WithCustomShape(&proShape{p: p}),
	}
	if o.Background.A == 0 {
		opts = append(opts, standard.WithBgTransparent())
	} else {
		opts = append(opts, standard.WithBgColor(o.Background))
	}
	if err := qrc.Save(standard.NewWithWriter(bufferCloser{&buf}, opts...)); err != nil {
		return nil, errors.Wrap(err, "draw pro symbol")
	}

	raw, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "decode pro symbol")
	}
	symbol := image.NewRGBA(image.Rect(0, 0, lay.side, lay.side))
	xdraw.CatmullRom.Scale(symbol, symbol.Bounds(), raw, raw.Bounds(), xdraw.Src, nil)

	if box := lay.logoBox(); !box.Empty() {
		fitted := logo.Fit(lay.logo, box.Dx(), box.Dy())
		dc := gg.NewContextForRGBA(symbol)
		dc.DrawImageAnchored(fitted, box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2, 0.5, 0.5)
	}

	padded, err := compose.Pad(symbol, lay.margin, o.Background)
	if err != nil {
		return nil, err
	}
	var out image.Image = padded
	if lay.width != lay.height {
		out = compose.Center(padded, lay.width, lay.height, o.Background)
	}

	return &Surface{
		Image:    out,
		Width:    lay.width,
		Height:   lay.height,
		Modules:  g.dim,
		Rendered: time.Now(),
	}, nil
}

// RenderSVG emits the same geometry as Render as vector paths. The logo is
// embedded as a data URI.
func (r *ProRenderer) RenderSVG(ctx context.Context, o Options, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, g, err := encodePro(o.Data, o.Level)
	if err != nil {
		return err
	}
	lay, err := planPro(ctx, o, g.dim)
	if err != nil {
		return err
	}
	p, err := newPainter(g, o)
	if err != nil {
		return err
	}
	p.hidden = lay.hidden
	p.block = float64(lay.side) / float64(g.dim)
	p.ox = float64(lay.width-lay.side) / 2
	p.oy = float64(lay.height-lay.side) / 2

	cv := &svgCanvas{}
	p.all(cv)

	if box := lay.logoBox(); !box.Empty() {
		x := p.ox + float64(box.Min.X)
		y := p.oy + float64(box.Min.Y)
		uri := html.EscapeString(o.Logo.DataURI())
		cv.sb.WriteString(`<image x="` + num(x) + `" y="` + num(y) +
			`" width="` + num(float64(box.Dx())) + `" height="` + num(float64(box.Dy())) +
			`" preserveAspectRatio="xMidYMid meet" href="` + uri + `" xlink:href="` + uri + `"/>`)
	}

	return errors.Wrap(writeSVGDocument(w, lay.width, lay.height, o.Background, cv.sb.String()), "write svg")
}
