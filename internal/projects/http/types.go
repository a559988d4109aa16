package http

import (
	"context"
	"encoding/json"

	"github.com/figmachat/figmachat-backend/internal/projects/domain"
	"github.com/figmachat/figmachat-backend/internal/projects/service"
)

// ProjectService is satisfied by *service.ProjectService.
type ProjectService interface {
	Create(ctx context.Context, ownerID string, req service.CreateRequest) (*domain.Project, error)
	Get(ctx context.Context, ownerID, projectID string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Summary, error)
	Rename(ctx context.Context, ownerID, projectID, newName string) (*domain.Summary, error)
	Delete(ctx context.Context, ownerID, projectID string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc ProjectService
}

func New(svc ProjectService) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Name      string          `json:"name" binding:"required,maxbytes=512"`
	FigmaLink string          `json:"figma_link" binding:"required,maxbytes=2048"`
	Context   json.RawMessage `json:"context"`
}

type renameReq struct {
	Name string `json:"name" binding:"required,maxbytes=512"`
}
