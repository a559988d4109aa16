package http

import (
	"context"

	"github.com/figmachat/figmachat-backend/internal/users"
)

// ProfileStore is satisfied by *users.Repo.
type ProfileStore interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*users.User, error)
	UpdateProfile(ctx context.Context, uid string, upd users.ProfileUpdate) (*users.User, error)
}

type Handler struct {
	users ProfileStore
}

func New(store ProfileStore) *Handler {
	return &Handler{users: store}
}

type updateProfileReq struct {
	DisplayName *string `json:"display_name" binding:"omitempty,maxbytes=256"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,maxbytes=2048"`
}
