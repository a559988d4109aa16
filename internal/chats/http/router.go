package http

import "github.com/gin-gonic/gin"

// Register attaches chat routes to a group mounted at /projects/:project_id/chats.
// sendLimit guards the streaming endpoint and may be nil.
func (h *Handler) Register(rg *gin.RouterGroup, sendLimit gin.HandlerFunc) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:chat_id", h.get)
	rg.PATCH("/:chat_id", h.rename)
	rg.DELETE("/:chat_id", h.delete)

	send := []gin.HandlerFunc{h.sendMessage}
	if sendLimit != nil {
		send = append([]gin.HandlerFunc{sendLimit}, send...)
	}
	rg.POST("/:chat_id/messages", send...)
}
