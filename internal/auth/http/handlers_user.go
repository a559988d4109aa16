package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/api/http/response"
	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
	"github.com/figmachat/figmachat-backend/internal/auth"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
	"github.com/figmachat/figmachat-backend/internal/users"
)

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users.GetByFirebaseUID(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		response.Error(c, storeError("get profile", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

// UpdateProfile updates the user's display name and photo
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validation.Message(err))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), auth.UserFirebaseUID(c), users.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		response.Error(c, storeError("update profile", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func storeError(op string, err error) error {
	if errors.Is(err, users.ErrNotFound) {
		return apierr.NotFound(op, err)
	}
	return apierr.Persistence(op, err)
}
