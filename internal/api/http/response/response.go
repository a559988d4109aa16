package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
)

// Error writes the failure envelope with the status derived from err's kind.
// Untyped errors are reported as a generic internal error.
func Error(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	msg := err.Error()
	if apierr.KindOf(err) == apierr.KindInternal {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
