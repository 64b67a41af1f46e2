package settings

import (
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnumerationsRoundTripTheirTags(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	for _, s := range ModuleShapes {
		got, err := ParseModuleShape(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for _, s := range CornerShapes {
		got, err := ParseCornerShape(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for _, f := range Formats {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestParseRejectsUnknownTags(t *testing.T) {
	_, err := ParseLevel("X")
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ParseModuleShape("classy")
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ParseCornerShape("rounded")
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ParseFormat("gif")
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ParseMode("")
	assert.True(t, errors.Is(err, ErrUnknownValue))
}

func TestParseFormatAcceptsJPGAlias(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)
	assert.Equal(t, "jpg", f.Extension())
	assert.Equal(t, "image/jpeg", f.ContentType())
}

func TestEffectiveDataSubstitutesPlaceholder(t *testing.T) {
	assert.Equal(t, Placeholder, EffectiveData(""))
	assert.Equal(t, "   ", EffectiveData("   "))
	assert.Equal(t, "https://qrcreator.link", EffectiveData("https://qrcreator.link"))

	s := Classic()
	assert.NotEmpty(t, s.Effective())
}

func TestValidateMargin(t *testing.T) {
	for m := 0; m <= MaxMargin; m += MarginStep {
		assert.NoError(t, ValidateMargin(m), "margin %d", m)
	}
	for _, m := range []int{-5, 3, 55, 51} {
		assert.True(t, errors.Is(ValidateMargin(m), ErrInvalidMargin), "margin %d", m)
	}
}

func TestDefaults(t *testing.T) {
	c := Defaults(ModeClassic)
	assert.Equal(t, LevelLow, c.Level)
	assert.Equal(t, 20, c.Margin)
	assert.Nil(t, c.Logo)

	p := Defaults(ModePro)
	assert.Equal(t, ModuleRounded, p.ModuleShape)
	assert.Equal(t, CornerExtraRounded, p.CornerShape)
	assert.Equal(t, 0, p.Margin)
	assert.Equal(t, FormatPNG, p.Format)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 128, A: 255}, c)

	c, err = ParseColor("0f0")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c)

	_, err = ParseColor("#12345")
	assert.True(t, errors.Is(err, ErrInvalidColor))

	_, err = ParseColor("#gggggg")
	assert.True(t, errors.Is(err, ErrInvalidColor))

	assert.Equal(t, "#ff8000", Hex(color.RGBA{R: 255, G: 128, A: 255}))
}

func TestColorOr(t *testing.T) {
	def := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	assert.Equal(t, def, ColorOr("", def))
	assert.Equal(t, def, ColorOr("nope", def))
	assert.Equal(t, color.RGBA{}, ColorOr("Transparent", def))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, ColorOr("#ffffff", def))
}

func TestNormalizeURL(t *testing.T) {
	u, err := NormalizeURL("qrcreator.link/path")
	require.NoError(t, err)
	assert.Equal(t, "https://qrcreator.link/path", u)

	u, err = NormalizeURL("  http://example.com ")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", u)

	_, err = NormalizeURL("")
	assert.Error(t, err)

	_, err = NormalizeURL("ftp://example.com")
	assert.Error(t, err)
}
