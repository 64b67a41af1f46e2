package handlers

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := studio.DefaultConfig()
	cfg.SettleDelay = 0
	store := studio.NewStore(cfg, 8, time.Hour, time.Minute)

	r := gin.New()
	r.Use(RequestLogger())
	New(store, Options{UploadLimit: 1 << 20, ExportSizes: cfg.ExportSizes}).Register(r)
	return r
}

// client keeps the session cookie between requests.
type client struct {
	t      *testing.T
	r      *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T) *client {
	return &client{t: t, r: newRouter(t)}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.r.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			cl.cookie = ck
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return cl.do(req)
}

func jsonError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthzAndSitemap(t *testing.T) {
	cl := newClient(t)

	w := cl.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = cl.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")

	var sm sitemap
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &sm))
	assert.Equal(t, sitemapNS, sm.XMLNS)
	require.Len(t, sm.URLs, 1)
	assert.Equal(t, "http://example.com/", sm.URLs[0].Loc)
}

func TestSitemapOrigin(t *testing.T) {
	sitemapFor := func(opts Options, req *http.Request) string {
		store := studio.NewStore(studio.DefaultConfig(), 1, time.Hour, time.Minute)
		r := gin.New()
		New(store, opts).Register(r)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	assert.Contains(t, sitemapFor(Options{PublicURL: "https://qr.example/"}, req), "<loc>https://qr.example/</loc>")

	req = httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "public.example")
	assert.Contains(t, sitemapFor(Options{}, req), "<loc>https://public.example/</loc>")
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	cl := newClient(t)

	w := cl.get("/healthz")
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	id := uuid.NewString()
	req.Header.Set(HeaderRequestID, id)
	w = cl.do(req)
	assert.Equal(t, id, w.Header().Get(HeaderRequestID))
}

func TestHomeIssuesSession(t *testing.T) {
	cl := newClient(t)

	w := cl.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, cl.cookie)
	assert.NoError(t, uuid.Validate(cl.cookie.Value))

	body := w.Body.String()
	assert.Contains(t, body, `id="panel"`)
	assert.Contains(t, body, `data-mode="classic"`)
	assert.Contains(t, body, `id="mode-tabs"`)
	assert.Contains(t, body, `id="toasts"`)

	first := cl.cookie.Value
	cl.get("/")
	assert.Equal(t, first, cl.cookie.Value)
}

func TestModeToggleKeepsURL(t *testing.T) {
	cl := newClient(t)

	w := cl.post("/api/studio/url", url.Values{"url": {"https://keep.example"}}, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = cl.post("/api/studio/mode", url.Values{"mode": {"pro"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-mode="pro"`)
	assert.Contains(t, w.Body.String(), `hx-swap-oob="true"`)

	w = cl.get("/")
	assert.Contains(t, w.Body.String(), `value="https://keep.example"`)
	assert.Contains(t, w.Body.String(), `data-mode="pro"`)
}

func TestSettingsErrorsBecomeToasts(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/pro/settings", url.Values{"margin": {"7"}}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#toasts", w.Header().Get("HX-Retarget"))
	assert.Equal(t, "beforeend", w.Header().Get("HX-Reswap"))
	assert.Contains(t, w.Body.String(), `data-variant="error"`)

	w = cl.post("/api/studio/classic/settings", url.Values{"module": {"dots"}}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, jsonError(t, w))

	w = cl.post("/api/studio/bogus/settings", url.Values{}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectedSettingLeavesPanelUntouched(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/pro/settings", url.Values{
		"level": {"H"},
		"fg":    {"not-a-color"},
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.post("/api/studio/classic/settings", url.Values{
		"margin": {"40"},
		"format": {"svg"},
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.post("/api/studio/mode", url.Values{"mode": {"pro"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Q" checked`)

	w = cl.post("/api/studio/mode", url.Values{"mode": {"classic"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="20"`)
	assert.NotContains(t, w.Body.String(), `value="40"`)
}

func TestSettingsUpdatePreview(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/pro/settings", url.Values{
		"level":  {"H"},
		"module": {"dots"},
		"corner": {"dot"},
		"margin": {"20"},
		"fg":     {"#112233"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="H" checked`)
	assert.Contains(t, body, `<option value="dots" selected>`)
	assert.Contains(t, body, `value="#112233"`)

	w = cl.get("/api/studio/pro/preview")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 300), img.Bounds())
}

func TestClassicPreviewIncludesMargin(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.get("/api/studio/classic/preview")
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 320), img.Bounds())
}

func TestClassicExportDownloadsOnce(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/classic/export", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/api/studio/download/"))

	w = cl.get(location)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="qr-classic-padded.png"`, w.Header().Get("Content-Disposition"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	w = cl.get(location)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadsAreScopedToSession(t *testing.T) {
	r := newRouter(t)
	owner := &client{t: t, r: r}
	owner.get("/")

	w := owner.post("/api/studio/classic/export", url.Values{}, true)
	require.Equal(t, http.StatusOK, w.Code)
	location := w.Header().Get("HX-Redirect")
	require.NotEmpty(t, location)

	stranger := &client{t: t, r: r}
	stranger.get("/")
	assert.Equal(t, http.StatusNotFound, stranger.get(location).Code)
	assert.Equal(t, http.StatusOK, owner.get(location).Code)
}

func TestProExport(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/pro/export?size=1234", url.Values{}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.post("/api/studio/pro/settings", url.Values{"format": {"svg"}}, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = cl.post("/api/studio/pro/export?size=1000", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = cl.get(w.Header().Get("Location"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-pro-1000px.svg"`, w.Header().Get("Content-Disposition"))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLogoUploadAndClear(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("logo", "brand.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/studio/pro/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := cl.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "brand.png")
	assert.Contains(t, w.Body.String(), "hx-delete")

	w = cl.do(httptest.NewRequest(http.MethodDelete, "/api/studio/pro/logo", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "brand.png")
}

func TestLogoUploadRequiresFile(t *testing.T) {
	cl := newClient(t)
	cl.get("/")

	w := cl.post("/api/studio/classic/logo", url.Values{}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenericToast(t *testing.T) {
	cl := newClient(t)

	w := cl.post("/api/htmx/toast", url.Values{
		"title":       {"Copied"},
		"variant":     {"destructive"},
		"dismissible": {"on"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Copied")
	assert.Contains(t, w.Body.String(), `data-variant="error"`)
	assert.Contains(t, w.Body.String(), `data-duration="2000"`)
}
