package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/api/http/response"
	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
	"github.com/figmachat/figmachat-backend/internal/auth"
	"github.com/figmachat/figmachat-backend/internal/demos/domain"
)

// DemoService is satisfied by *service.DemoService.
type DemoService interface {
	List(ctx context.Context, ownerID, projectID, chatID string) ([]domain.Demo, error)
	CreateForOwner(ctx context.Context, ownerID, projectID, chatID, userMessage, assistantMessage string) (*domain.Demo, error)
}

type Handler struct {
	svc DemoService
}

func New(svc DemoService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches demo routes to a group mounted at /projects/:project_id/chats/:chat_id.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/web-demo", h.list)
	rg.POST("/web-demo", h.create)
}

type createReq struct {
	UserMessage      string `json:"user_message" binding:"required,maxbytes"`
	AssistantMessage string `json:"assistant_message" binding:"required,maxbytes=262144"`
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("project_id"), c.Param("chat_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "web_demos": items})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	d, err := h.svc.CreateForOwner(c.Request.Context(), auth.UserFirebaseUID(c),
		c.Param("project_id"), c.Param("chat_id"), req.UserMessage, req.AssistantMessage)
	if err != nil {
		response.Error(c, err)
		return
	}
	if d == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "should_create": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"web_demo": gin.H{
			"id":          d.ID,
			"name":        d.Name,
			"description": d.Description,
			"created_at":  d.CreatedAt,
		},
	})
}
