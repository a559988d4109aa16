package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/api/http/response"
	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
)

// sendMessage relays the assistant's NDJSON chunk stream to the client,
// flushing after every write.
func (h *Handler) sendMessage(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	body, err := h.pipeline.SendMessage(c.Request.Context(), ref(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer body.Close()

	// A client disconnect closes the relay, which ends the turn early and
	// stores the partial answer.
	stop := context.AfterFunc(c.Request.Context(), func() { _ = body.Close() })
	defer stop()

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	buf := make([]byte, 32*1024)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				h.log.For(c.Request.Context()).Debug("client write failed", "error", werr)
				return
			}
			c.Writer.Flush()
		}
		if rerr != nil {
			return
		}
	}
}
