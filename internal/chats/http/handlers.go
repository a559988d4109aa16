package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/api/http/response"
	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
	"github.com/figmachat/figmachat-backend/internal/auth"
	"github.com/figmachat/figmachat-backend/internal/chats/domain"
)

func ref(c *gin.Context) domain.Ref {
	return domain.Ref{
		ChatID:    c.Param("chat_id"),
		ProjectID: c.Param("project_id"),
		OwnerID:   auth.UserFirebaseUID(c),
	}
}

func (h *Handler) create(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	chat, err := h.chats.Create(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("project_id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "chat": chat})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.chats.List(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chats": items})
}

func (h *Handler) get(c *gin.Context) {
	chat, err := h.chats.Get(c.Request.Context(), ref(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chat": chat})
}

func (h *Handler) rename(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	s, err := h.chats.Rename(c.Request.Context(), ref(c), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chat": s})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.chats.Delete(c.Request.Context(), ref(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
