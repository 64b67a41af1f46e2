package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// fakeRenderer draws blank surfaces of the requested size and fails for the
// widths listed in fail.
type fakeRenderer struct {
	mu    sync.Mutex
	calls []Options
	fail  map[int]error
}

func (f *fakeRenderer) Render(ctx context.Context, o Options) (*Surface, error) {
	f.mu.Lock()
	f.calls = append(f.calls, o)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.fail[o.Width]; err != nil {
		return nil, err
	}
	return &Surface{
		Image:  image.NewRGBA(image.Rect(0, 0, o.Width, o.Height)),
		Width:  o.Width,
		Height: o.Height,
	}, nil
}

func (f *fakeRenderer) last() Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type vectorFake struct {
	fakeRenderer
}

func (v *vectorFake) RenderSVG(_ context.Context, o Options, w io.Writer) error {
	_, err := fmt.Fprintf(w, `<svg width="%d" height="%d"/>`, o.Width, o.Height)
	return err
}

type recordingContainer struct {
	mu    sync.Mutex
	shown []int
}

func (c *recordingContainer) Show(s *Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shown = append(c.shown, s.Width)
}

func (c *recordingContainer) widths() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.shown...)
}

func newTestBinding(t *testing.T, r Renderer) (*Binding, *recordingContainer) {
	t.Helper()
	b := NewBinding(r, FromSettings(settings.Pro(), settings.ProPreviewSize))
	c := &recordingContainer{}
	require.NoError(t, b.Mount(context.Background(), c))
	return b, c
}

func TestMountRendersOnce(t *testing.T) {
	r := &fakeRenderer{}
	b, c := newTestBinding(t, r)

	assert.Equal(t, []int{300}, c.widths())
	require.NotNil(t, b.Surface())
	assert.Equal(t, settings.Placeholder, r.last().Data)

	other := &recordingContainer{}
	require.NoError(t, b.Mount(context.Background(), other))
	assert.Len(t, r.calls, 1)
	assert.Equal(t, []int{300}, other.widths())
}

func TestUpdateIsIdempotent(t *testing.T) {
	r := &fakeRenderer{}
	b, c := newTestBinding(t, r)
	ctx := context.Background()

	require.NoError(t, b.Update(ctx, WithData("https://a.example"), WithLevel(settings.LevelHigh)))
	first := b.Options()
	require.NoError(t, b.Update(ctx, WithData("https://a.example"), WithLevel(settings.LevelHigh)))

	assert.Equal(t, first, b.Options())
	assert.Equal(t, []int{300, 300, 300}, c.widths())
	assert.Equal(t, "https://a.example", r.last().Data)
	assert.Equal(t, settings.LevelHigh, r.last().Level)
}

func TestEmptyDataRendersPlaceholder(t *testing.T) {
	r := &fakeRenderer{}
	b, _ := newTestBinding(t, r)

	require.NoError(t, b.Update(context.Background(), WithData("")))
	assert.Equal(t, settings.Placeholder, r.last().Data)

	require.NoError(t, b.Update(context.Background(), WithData("   ")))
	assert.Equal(t, "   ", r.last().Data)
}

func TestWithoutLogoReachesNextRender(t *testing.T) {
	r := &fakeRenderer{}
	b, _ := newTestBinding(t, r)
	ctx := context.Background()

	img := &logo.Image{Name: "a.png", ContentType: "image/png", Data: []byte{1}}
	require.NoError(t, b.Update(ctx, WithLogo(img)))
	assert.Same(t, img, r.last().Logo)

	require.NoError(t, b.Update(ctx, WithoutLogo()))
	assert.Nil(t, r.last().Logo)
	assert.Nil(t, b.Options().Logo)
}

func TestRenderFailureDropsSurface(t *testing.T) {
	boom := errors.New("boom")
	r := &fakeRenderer{fail: map[int]error{500: boom}}
	b, _ := newTestBinding(t, r)

	err := b.Update(context.Background(), WithSize(500))
	assert.True(t, errors.Is(err, boom))
	assert.Nil(t, b.Surface())

	_, err = b.Export(context.Background(), "qr", settings.FormatPNG)
	assert.True(t, errors.Is(err, ErrNoSurface))
}

func TestExportAtRestoresReferenceSize(t *testing.T) {
	r := &fakeRenderer{}
	b, c := newTestBinding(t, r)

	art, err := b.ExportAt(context.Background(), 1000, "qr-pro-1000px", settings.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "qr-pro-1000px.png", art.Filename)
	assert.Equal(t, "image/png", art.ContentType)
	assert.Equal(t, 1000, art.Width)

	decoded, err := png.Decode(bytes.NewReader(art.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1000, 1000), decoded.Bounds())

	assert.Equal(t, 300, b.Options().Width)
	assert.Equal(t, 300, b.Surface().Width)
	// The export resolution never reaches the preview.
	assert.Equal(t, []int{300, 300}, c.widths())
}

func TestExportAtRestoresAfterRenderFailure(t *testing.T) {
	boom := errors.New("out of memory")
	r := &fakeRenderer{fail: map[int]error{2000: boom}}
	b, c := newTestBinding(t, r)

	art, err := b.ExportAt(context.Background(), 2000, "qr-pro-2000px", settings.FormatPNG)
	assert.Nil(t, art)
	assert.True(t, errors.Is(err, boom))

	assert.Equal(t, 300, b.Options().Width)
	require.NotNil(t, b.Surface())
	assert.Equal(t, 300, b.Surface().Width)
	assert.Equal(t, []int{300, 300}, c.widths())
}

func TestExportAtRestoresAfterEncodeFailure(t *testing.T) {
	r := &fakeRenderer{}
	b, _ := newTestBinding(t, r)

	_, err := b.ExportAt(context.Background(), 1000, "qr", settings.FormatSVG)
	assert.True(t, errors.Is(err, ErrVectorUnsupported))
	assert.Equal(t, 300, b.Surface().Width)
}

func TestExportAtRestoresWhenCancelled(t *testing.T) {
	r := &fakeRenderer{}
	b, _ := newTestBinding(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ExportAt(ctx, 1000, "qr", settings.FormatPNG)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, b.Surface())
	assert.Equal(t, 300, b.Surface().Width)
}

func TestExportAtVector(t *testing.T) {
	r := &vectorFake{}
	b := NewBinding(r, FromSettings(settings.Pro(), 300))

	art, err := b.ExportAt(context.Background(), 2000, "qr-pro-2000px", settings.FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, "qr-pro-2000px.svg", art.Filename)
	assert.Equal(t, `<svg width="2000" height="2000"/>`, string(art.Data))
	assert.Equal(t, 300, b.Options().Width)
}

func TestExportAtRejectsBadSize(t *testing.T) {
	b, _ := newTestBinding(t, &fakeRenderer{})

	_, err := b.ExportAt(context.Background(), 0, "qr", settings.FormatPNG)
	assert.True(t, errors.Is(err, ErrInvalidSize))
	assert.Equal(t, 300, b.Options().Width)
}

func TestConcurrentExportsSerialize(t *testing.T) {
	r := &fakeRenderer{}
	b, _ := newTestBinding(t, r)

	var wg sync.WaitGroup
	for _, size := range []int{1000, 2000, 1000, 2000} {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			art, err := b.ExportAt(context.Background(), size, "qr", settings.FormatPNG)
			if assert.NoError(t, err) {
				assert.Equal(t, size, art.Width)
			}
		}(size)
	}
	wg.Wait()

	assert.Equal(t, 300, b.Surface().Width)
}
