package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/figmachat/figmachat-backend/internal/figma"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	"github.com/figmachat/figmachat-backend/internal/projects/domain"
)

type Repository interface {
	Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error)
	FindByOwner(ctx context.Context, projectID, ownerID string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Summary, error)
	Rename(ctx context.Context, ownerID, projectID, newName string) (*domain.Summary, error)
	Delete(ctx context.Context, ownerID, projectID string) (bool, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo  Repository
	figma figma.Fetcher
	log   *logger.Logger
}

// NewProjectService creates a new project service. fetcher may be nil, in
// which case projects keep whatever context the caller supplied.
func NewProjectService(repo Repository, fetcher figma.Fetcher, log *logger.Logger) *ProjectService {
	return &ProjectService{
		repo:  repo,
		figma: fetcher,
		log:   log.With("service", "ProjectService"),
	}
}

type CreateRequest struct {
	Name      string
	FigmaLink string
	Context   json.RawMessage
}

// Create stores a new project. The Figma snapshot is fetched eagerly; a failed
// fetch never blocks creation and leaves the context null.
func (s *ProjectService) Create(ctx context.Context, ownerID string, req CreateRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	link := strings.TrimSpace(req.FigmaLink)
	if name == "" || link == "" {
		return nil, apierr.InvalidArgument("create project", errors.New("missing name or figma_link"))
	}

	projectContext := req.Context
	if s.figma != nil {
		data, err := s.figma.FetchFileData(ctx, link)
		if err != nil {
			s.log.For(ctx).Warn("figma fetch failed, creating project without context",
				"figma_link", link, "error", err)
			projectContext = nil
		} else {
			projectContext = data
		}
	}

	p, err := s.repo.Create(ctx, domain.CreateInput{
		Name:      name,
		FigmaLink: link,
		Context:   projectContext,
		OwnerID:   ownerID,
	})
	if err != nil {
		return nil, apierr.Persistence("create project", err)
	}
	return p, nil
}

// Get returns the project if ownerID owns it.
func (s *ProjectService) Get(ctx context.Context, ownerID, projectID string) (*domain.Project, error) {
	p, err := s.repo.FindByOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, wrap("get project", err)
	}
	return p, nil
}

// List returns all projects for a user
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Summary, error) {
	items, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, apierr.Persistence("list projects", err)
	}
	return items, nil
}

// Rename updates a project's name
func (s *ProjectService) Rename(ctx context.Context, ownerID, projectID, newName string) (*domain.Summary, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apierr.InvalidArgument("rename project", errors.New("name required"))
	}
	p, err := s.repo.Rename(ctx, ownerID, projectID, newName)
	if err != nil {
		return nil, wrap("rename project", err)
	}
	return p, nil
}

// Delete removes a project with its chats and demos
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID string) error {
	ok, err := s.repo.Delete(ctx, ownerID, projectID)
	if err != nil {
		return apierr.Persistence("delete project", err)
	}
	if !ok {
		return apierr.NotFound("delete project", domain.ErrNotFound)
	}
	return nil
}

func wrap(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apierr.NotFound(op, err)
	}
	return apierr.Persistence(op, err)
}
