package handlers

import (
	"context"
	"image/color"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/render"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
	"github.com/cristianadrielbraun/qrultimate/web/components"
	"github.com/cristianadrielbraun/qrultimate/web/pages"
)

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, settings.ErrUnknownValue),
		errors.Is(err, settings.ErrInvalidMargin),
		errors.Is(err, settings.ErrInvalidColor),
		errors.Is(err, studio.ErrUnsupportedSize),
		errors.Is(err, studio.ErrNotInMode),
		errors.Is(err, logo.ErrEmpty),
		errors.Is(err, render.ErrInvalidSize),
		errors.Is(err, compose.ErrVectorFormat),
		errors.Is(err, compose.ErrNegativeMargin):
		return http.StatusBadRequest
	case errors.Is(err, logo.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, render.ErrNoSurface):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) panelView(ctrl *studio.Controller, m settings.Mode) (components.PanelView, error) {
	s, err := ctrl.Settings(m)
	if err != nil {
		return components.PanelView{}, err
	}
	pane, err := ctrl.Pane(m)
	if err != nil {
		return components.PanelView{}, err
	}
	s.Data = ctrl.URL()
	return components.PanelView{
		Mode:           m,
		Settings:       s,
		PreviewVersion: pane.Version(),
		ExportSizes:    h.exportSizes,
	}, nil
}

func (h *Handler) renderPanel(c *gin.Context, ctrl *studio.Controller, m settings.Mode) {
	v, err := h.panelView(ctrl, m)
	if err != nil {
		fail(c, statusOf(err), "Panel unavailable", err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := components.Panel(v).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func modeParam(c *gin.Context) (settings.Mode, bool) {
	m, err := settings.ParseMode(c.Param("mode"))
	if err != nil {
		fail(c, http.StatusNotFound, "Unknown mode", err)
		return 0, false
	}
	return m, true
}

// Home renders the studio page for the caller's session.
func (h *Handler) Home(c *gin.Context) {
	ctrl := controller(c)
	mode := ctrl.Mode()
	panel, err := h.panelView(ctrl, mode)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	view := components.HomeView{URL: ctrl.URL(), Mode: mode, Panel: panel}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(view).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// SetURL updates the destination text shared by both panels and returns the
// active panel.
func (h *Handler) SetURL(c *gin.Context) {
	ctrl := controller(c)
	if err := ctrl.SetURL(c.Request.Context(), c.PostForm("url")); err != nil {
		fail(c, statusOf(err), "Could not render the QR code", err)
		return
	}
	h.renderPanel(c, ctrl, ctrl.Mode())
}

// SetMode switches the active panel. The tabs are swapped out of band.
func (h *Handler) SetMode(c *gin.Context) {
	ctrl := controller(c)
	m, err := settings.ParseMode(c.PostForm("mode"))
	if err == nil {
		err = ctrl.SetMode(m)
	}
	if err != nil {
		fail(c, statusOf(err), "Unknown mode", err)
		return
	}
	h.renderPanel(c, ctrl, m)
	if err := components.ModeTabsSwap(m).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// UpdateSettings validates every posted control, then applies those that
// differ from the panel's current settings. A rejected control leaves the
// panel untouched.
func (h *Handler) UpdateSettings(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	ctrl := controller(c)
	form, err := parseSettingsForm(c, m)
	if err == nil {
		err = form.apply(c.Request.Context(), ctrl, m)
	}
	if err != nil {
		fail(c, statusOf(err), "Invalid setting", err)
		return
	}
	h.renderPanel(c, ctrl, m)
}

// settingsForm holds the posted controls. Nil fields were not posted.
type settingsForm struct {
	level  *settings.Level
	fg, bg *color.RGBA
	margin *int
	module *settings.ModuleShape
	corner *settings.CornerShape
	format *settings.Format
}

func parseSettingsForm(c *gin.Context, m settings.Mode) (settingsForm, error) {
	var f settingsForm

	if v, ok := c.GetPostForm("level"); ok {
		l, err := settings.ParseLevel(v)
		if err != nil {
			return f, err
		}
		f.level = &l
	}
	for _, field := range []struct {
		name string
		dst  **color.RGBA
	}{{"fg", &f.fg}, {"bg", &f.bg}} {
		if v, ok := c.GetPostForm(field.name); ok {
			col, err := settings.ParseColor(v)
			if err != nil {
				return f, err
			}
			*field.dst = &col
		}
	}
	if v, ok := c.GetPostForm("margin"); ok {
		margin, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return f, errors.Wrapf(settings.ErrInvalidMargin, "margin %q", v)
		}
		if err := settings.ValidateMargin(margin); err != nil {
			return f, err
		}
		f.margin = &margin
	}
	if v, ok := c.GetPostForm("module"); ok {
		shape, err := settings.ParseModuleShape(v)
		if err != nil {
			return f, err
		}
		f.module = &shape
	}
	if v, ok := c.GetPostForm("corner"); ok {
		shape, err := settings.ParseCornerShape(v)
		if err != nil {
			return f, err
		}
		f.corner = &shape
	}
	if v, ok := c.GetPostForm("format"); ok {
		format, err := settings.ParseFormat(v)
		if err != nil {
			return f, err
		}
		f.format = &format
	}

	if m != settings.ModePro && (f.module != nil || f.corner != nil || f.format != nil) {
		return f, errors.Wrapf(studio.ErrNotInMode, "%s panel", m)
	}
	return f, nil
}

func (f settingsForm) apply(ctx context.Context, ctrl *studio.Controller, m settings.Mode) error {
	cur, err := ctrl.Settings(m)
	if err != nil {
		return err
	}

	if f.level != nil && *f.level != cur.Level {
		if err := ctrl.SetLevel(ctx, m, *f.level); err != nil {
			return err
		}
	}
	fg, bg := cur.Foreground, cur.Background
	if f.fg != nil {
		fg = *f.fg
	}
	if f.bg != nil {
		bg = *f.bg
	}
	if fg != cur.Foreground || bg != cur.Background {
		if err := ctrl.SetColors(ctx, m, fg, bg); err != nil {
			return err
		}
	}
	if f.margin != nil && *f.margin != cur.Margin {
		if err := ctrl.SetMargin(ctx, m, *f.margin); err != nil {
			return err
		}
	}
	if f.module != nil && *f.module != cur.ModuleShape {
		if err := ctrl.SetModuleShape(ctx, m, *f.module); err != nil {
			return err
		}
	}
	if f.corner != nil && *f.corner != cur.CornerShape {
		if err := ctrl.SetCornerShape(ctx, m, *f.corner); err != nil {
			return err
		}
	}
	if f.format != nil && *f.format != cur.Format {
		return ctrl.SetFormat(m, *f.format)
	}
	return nil
}

// UploadLogo embeds the posted file as the panel's logo.
func (h *Handler) UploadLogo(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	ctrl := controller(c)

	fh, err := c.FormFile("logo")
	if err != nil {
		fail(c, http.StatusBadRequest, "No logo received", err)
		return
	}
	if fh.Size > h.uploadLimit {
		fail(c, http.StatusRequestEntityTooLarge, "Logo too large", logo.ErrTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read the logo", err)
		return
	}
	defer f.Close()

	img, err := logo.Read(c.Request.Context(), f, fh.Filename, h.uploadLimit)
	if err == nil {
		err = ctrl.SetLogo(c.Request.Context(), m, img)
	}
	if err != nil {
		fail(c, statusOf(err), "Could not use the logo", err)
		return
	}
	h.renderPanel(c, ctrl, m)
}

// ClearLogo removes the panel's logo.
func (h *Handler) ClearLogo(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	ctrl := controller(c)
	if err := ctrl.ClearLogo(c.Request.Context(), m); err != nil {
		fail(c, statusOf(err), "Could not remove the logo", err)
		return
	}
	h.renderPanel(c, ctrl, m)
}

// Preview streams what the panel currently shows as PNG.
func (h *Handler) Preview(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	img, err := controller(c).Preview(m)
	if err != nil {
		c.AbortWithStatusJSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", settings.FormatPNG.ContentType())
	c.Status(http.StatusOK)
	if err := compose.Encode(c.Writer, img, settings.FormatPNG); err != nil {
		_ = c.Error(err)
	}
}

// Export prepares a download of the panel and redirects the browser to it.
// A classic export before the first render answers 204 and nothing else.
func (h *Handler) Export(c *gin.Context) {
	m, ok := modeParam(c)
	if !ok {
		return
	}
	ctrl := controller(c)
	ctx := c.Request.Context()

	var (
		art *render.Artifact
		err error
	)
	if m == settings.ModeClassic {
		art, err = ctrl.ExportClassic(ctx)
	} else {
		size, convErr := strconv.Atoi(c.Query("size"))
		if convErr != nil {
			fail(c, http.StatusBadRequest, "Export failed", errors.Wrapf(studio.ErrUnsupportedSize, "size %q", c.Query("size")))
			return
		}
		art, err = ctrl.ExportPro(ctx, size)
	}
	if err != nil {
		fail(c, statusOf(err), "Export failed", err)
		return
	}
	if art == nil {
		c.Status(http.StatusNoContent)
		return
	}

	location := "/api/studio/download/" + h.store.PutDownload(sessionID(c), art)
	if c.GetHeader("HX-Request") != "" {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Download serves a prepared export once, as an attachment.
func (h *Handler) Download(c *gin.Context) {
	art, ok := h.store.TakeDownload(sessionID(c), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found or expired"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
