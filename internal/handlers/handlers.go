// Package handlers exposes the studio and the stateless QR API over gin.
package handlers

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

// Options carries the transport limits of the HTTP layer.
type Options struct {
	UploadLimit int64
	ExportSizes []int
	// PublicURL is the externally visible origin, e.g. https://qr.example.
	// When empty it is derived from the request.
	PublicURL string
}

// Handler holds the session store shared by all requests.
type Handler struct {
	store       *studio.Store
	uploadLimit int64
	exportSizes []int
	publicURL   string
}

// New returns a Handler serving sessions from store.
func New(store *studio.Store, opts Options) *Handler {
	if opts.UploadLimit <= 0 {
		opts.UploadLimit = logo.DefaultLimit
	}
	if len(opts.ExportSizes) == 0 {
		opts.ExportSizes = studio.DefaultConfig().ExportSizes
	}
	return &Handler{
		store:       store,
		uploadLimit: opts.UploadLimit,
		exportSizes: opts.ExportSizes,
		publicURL:   strings.TrimRight(opts.PublicURL, "/"),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/sitemap.xml", h.SitemapXML)
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/htmx/toast", h.GenericToast)
	}

	pages := r.Group("/", h.Sessions())
	pages.GET("/", h.Home)

	st := r.Group("/api/studio", h.Sessions())
	{
		st.POST("/url", h.SetURL)
		st.POST("/mode", h.SetMode)
		st.POST("/:mode/settings", h.UpdateSettings)
		st.POST("/:mode/logo", h.UploadLogo)
		st.DELETE("/:mode/logo", h.ClearLogo)
		st.GET("/:mode/preview", h.Preview)
		st.POST("/:mode/export", h.Export)
		st.GET("/download/:id", h.Download)
	}
}

// Healthz answers liveness probes.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// origin returns the scheme and host the studio is reached at.
func (h *Handler) origin(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if xf := c.GetHeader("X-Forwarded-Proto"); xf != "" {
		scheme = xf
	}
	host := c.Request.Host
	if xh := c.GetHeader("X-Forwarded-Host"); xh != "" {
		host = xh
	}
	return scheme + "://" + host
}

// SitemapXML lists the studio page.
func (h *Handler) SitemapXML(c *gin.Context) {
	sm := sitemap{
		XMLNS: sitemapNS,
		URLs: []sitemapURL{
			{Loc: h.origin(c) + "/", ChangeFreq: "weekly", Priority: "1.0"},
		},
	}
	body, err := xml.MarshalIndent(sm, "", "  ")
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), append(body, '\n')...))
}
