package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	toast "github.com/cristianadrielbraun/qrultimate/web/components/ui/toast"
)

// toastDuration is how long a toast stays on screen, in milliseconds.
const toastDuration = 2000

func parseVariant(variant string) toast.Variant {
	switch variant {
	case "error", "destructive":
		return toast.VariantError
	case "warning":
		return toast.VariantWarning
	case "info":
		return toast.VariantInfo
	default:
		return toast.VariantSuccess
	}
}

// GenericToast renders a Toast from form fields as HTML for htmx swaps.
func (h *Handler) GenericToast(c *gin.Context) {
	renderToast(c, http.StatusOK, toast.Props{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Variant:     parseVariant(c.PostForm("variant")),
		Dismissible: c.PostForm("dismissible") == "on",
	})
}

func renderToast(c *gin.Context, status int, p toast.Props) {
	p.Position = toast.PositionBottomRight
	p.Duration = toastDuration
	p.Icon = true

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := toast.Toast(p).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// fail reports err to the caller. htmx requests get an error toast appended
// to #toasts; anything else gets a JSON error with the real status.
func fail(c *gin.Context, status int, title string, err error) {
	l := logger.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		l.Error(title, zap.Error(err))
	} else {
		l.Debug(title, zap.Error(err))
	}

	if c.GetHeader("HX-Request") == "" {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Header("HX-Retarget", "#toasts")
	c.Header("HX-Reswap", "beforeend")
	renderToast(c, http.StatusOK, toast.Props{
		Title:       title,
		Description: err.Error(),
		Variant:     toast.VariantError,
		Dismissible: true,
	})
	c.Abort()
}
