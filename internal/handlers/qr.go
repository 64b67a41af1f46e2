package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

// defaultQRSize is the edge of /api/qr renders when size is omitted.
const defaultQRSize = 300

// qrQuery is the parameter set of the stateless endpoint. Absent fields keep
// the mode's defaults.
type qrQuery struct {
	URL      string `form:"url"`
	Mode     string `form:"mode"`
	FG       string `form:"fg"`
	BG       string `form:"bg"`
	Level    string `form:"level"`
	Margin   *int   `form:"margin"`
	Module   string `form:"module"`
	Corner   string `form:"corner"`
	Size     int    `form:"size"`
	Format   string `form:"format"`
	Download bool   `form:"download"`
}

func (q qrQuery) settings() (settings.Mode, settings.Settings, error) {
	mode := settings.ModePro
	if q.Mode != "" {
		m, err := settings.ParseMode(q.Mode)
		if err != nil {
			return 0, settings.Settings{}, err
		}
		mode = m
	}
	s := settings.Defaults(mode)

	data, err := settings.NormalizeURL(q.URL)
	if err != nil {
		return 0, settings.Settings{}, err
	}
	s.Data = data
	s.Foreground = settings.ColorOr(q.FG, s.Foreground)
	s.Background = settings.ColorOr(q.BG, s.Background)
	if q.Margin != nil {
		s.Margin = *q.Margin
	}

	if q.Level != "" {
		if s.Level, err = settings.ParseLevel(q.Level); err != nil {
			return 0, settings.Settings{}, err
		}
	}
	if q.Module != "" {
		if s.ModuleShape, err = settings.ParseModuleShape(q.Module); err != nil {
			return 0, settings.Settings{}, err
		}
	}
	if q.Corner != "" {
		if s.CornerShape, err = settings.ParseCornerShape(q.Corner); err != nil {
			return 0, settings.Settings{}, err
		}
	}
	if q.Format != "" {
		if s.Format, err = settings.ParseFormat(q.Format); err != nil {
			return 0, settings.Settings{}, err
		}
	}
	return mode, s, nil
}

// QRCodeHandler renders a QR code straight from query parameters.
//
//	GET /api/qr?url=example.com&mode=pro&module=dots&corner=dot&size=600&format=svg
func (h *Handler) QRCodeHandler(c *gin.Context) {
	var q qrQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Wrap(err, "invalid query").Error()})
		return
	}
	if strings.TrimSpace(q.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}
	if q.Size == 0 {
		q.Size = defaultQRSize
	}

	mode, s, err := q.settings()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	art, err := studio.Render(c.Request.Context(), mode, s, q.Size)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-QR-Size", strconv.Itoa(art.Width)+"x"+strconv.Itoa(art.Height))
	if q.Download {
		c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	}
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
