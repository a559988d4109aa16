package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/figmachat/figmachat-backend/internal/platform/ids"
	"github.com/figmachat/figmachat-backend/internal/projects/domain"
	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db postgres.DBTX
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db postgres.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project for the given owner.
func (r *ProjectRepository) Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name required")
	}
	if in.OwnerID == "" {
		return nil, fmt.Errorf("owner id required")
	}

	var contextArg any
	if len(in.Context) > 0 {
		contextArg = string(in.Context)
	}

	for i := 0; i < 5; i++ {
		id, err := ids.NewID("prj")
		if err != nil {
			return nil, err
		}

		const q = `
INSERT INTO projects (id, name, figma_link, context, owner_id)
VALUES ($1, $2, $3, $4::jsonb, $5)
RETURNING created_at;
`
		p := domain.Project{
			ID:        id,
			Name:      in.Name,
			FigmaLink: in.FigmaLink,
			Context:   in.Context,
			OwnerID:   in.OwnerID,
		}
		err = r.db.QueryRow(ctx, q, id, in.Name, in.FigmaLink, contextArg, in.OwnerID).Scan(&p.CreatedAt)
		if err == nil {
			return &p, nil
		}

		// unique violation on id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

// FindByOwner returns the project including its Figma context, or ErrNotFound
// when it does not exist or belongs to someone else.
func (r *ProjectRepository) FindByOwner(ctx context.Context, projectID, ownerID string) (*domain.Project, error) {
	const q = `
SELECT id, name, figma_link, context, owner_id, created_at
FROM projects
WHERE id = $1 AND owner_id = $2;
`
	var (
		p   domain.Project
		raw []byte
	)
	err := r.db.QueryRow(ctx, q, projectID, ownerID).
		Scan(&p.ID, &p.Name, &p.FigmaLink, &raw, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Context = raw
	return &p, nil
}

// List returns all projects for the given owner, newest first.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]domain.Summary, error) {
	const q = `
SELECT id, name, figma_link, context IS NOT NULL AND context <> 'null'::jsonb, created_at
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Summary, 0, 16)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.FigmaLink, &s.HasContext, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the project's name.
func (r *ProjectRepository) Rename(ctx context.Context, ownerID, projectID, newName string) (*domain.Summary, error) {
	const q = `
UPDATE projects
SET name = $3
WHERE owner_id = $1 AND id = $2
RETURNING id, name, figma_link, context IS NOT NULL AND context <> 'null'::jsonb, created_at;
`
	var s domain.Summary
	err := r.db.QueryRow(ctx, q, ownerID, projectID, newName).
		Scan(&s.ID, &s.Name, &s.FigmaLink, &s.HasContext, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a project; chats and demos go with it via ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, projectID string) (bool, error) {
	const q = `DELETE FROM projects WHERE owner_id = $1 AND id = $2;`
	tag, err := r.db.Exec(ctx, q, ownerID, projectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
