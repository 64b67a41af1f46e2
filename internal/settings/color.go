package settings

import (
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidColor is returned by ParseColor for anything but #rgb or #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor parses a hex color with or without the leading '#'. The
// three-digit shorthand is expanded the way CSS does.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return color.RGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}

	r, err1 := strconv.ParseUint(v[0:2], 16, 8)
	g, err2 := strconv.ParseUint(v[2:4], 16, 8)
	b, err3 := strconv.ParseUint(v[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return color.RGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}

// ColorOr parses s and falls back to def when s is empty or malformed.
// "transparent" yields a fully transparent color.
func ColorOr(s string, def color.RGBA) color.RGBA {
	if s == "" {
		return def
	}
	if strings.EqualFold(s, "transparent") {
		return color.RGBA{}
	}
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

// Hex formats c as #rrggbb, dropping alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// maxURLLength caps destination URLs accepted by NormalizeURL.
const maxURLLength = 4096

// NormalizeURL validates and normalizes a URL for the stateless QR endpoint.
// It defaults the scheme to https and requires an http(s) URL with a host.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errors.New("URL parameter is required")
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > maxURLLength {
		return "", errors.New("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", errors.Wrap(err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", errors.New("URL must include a valid host")
	}
	return u.String(), nil
}
