package http

import "github.com/gin-gonic/gin"

// Register mounts the caller's profile routes. The group must run auth.RequireUser.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetProfile)
	rg.PUT("/me", h.UpdateProfile)
}
