package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/figmachat/figmachat-backend/internal/demos/domain"
	"github.com/figmachat/figmachat-backend/internal/platform/ids"
	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
)

type DemoRepository struct {
	db postgres.DBTX
}

func NewDemoRepository(db postgres.DBTX) *DemoRepository {
	return &DemoRepository{db: db}
}

// Create stores a generated demo. Demos are always inline-CSS documents.
func (r *DemoRepository) Create(ctx context.Context, in domain.CreateInput) (*domain.Demo, error) {
	meta, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	for i := 0; i < 5; i++ {
		id, err := ids.NewID("demo")
		if err != nil {
			return nil, err
		}

		const q = `
INSERT INTO web_demos (id, project_id, chat_id, name, description, html_content, is_inline_css, metadata)
VALUES ($1, $2, $3, $4, $5, $6, true, $7::jsonb)
RETURNING created_at;
`
		d := domain.Demo{
			ID:          id,
			ProjectID:   in.ProjectID,
			ChatID:      in.ChatID,
			Name:        in.Name,
			Description: in.Description,
			HTMLContent: in.HTMLContent,
			IsInlineCSS: true,
			Metadata:    in.Metadata,
		}
		err = r.db.QueryRow(ctx, q, id, in.ProjectID, in.ChatID, in.Name, in.Description, in.HTMLContent, string(meta)).
			Scan(&d.CreatedAt)
		if err == nil {
			return &d, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to generate unique demo id")
}

// List returns the chat's demos, newest first, scoped to the project owner.
func (r *DemoRepository) List(ctx context.Context, ownerID, projectID, chatID string) ([]domain.Demo, error) {
	const q = `
SELECT d.id, d.project_id, d.chat_id, d.name, d.description, d.html_content, d.is_inline_css, d.metadata, d.created_at
FROM web_demos d
JOIN projects p ON p.id = d.project_id
WHERE d.project_id = $1 AND d.chat_id = $2 AND p.owner_id = $3
ORDER BY d.created_at DESC;
`
	rows, err := r.db.Query(ctx, q, projectID, chatID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Demo, 0, 8)
	for rows.Next() {
		var (
			d    domain.Demo
			meta []byte
		)
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.ChatID, &d.Name, &d.Description, &d.HTMLContent, &d.IsInlineCSS, &meta, &d.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &d.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ChatOwned reports whether chatID belongs to projectID and projectID to ownerID.
func (r *DemoRepository) ChatOwned(ctx context.Context, ownerID, projectID, chatID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM chats c
  JOIN projects p ON p.id = c.project_id
  WHERE c.id = $1 AND c.project_id = $2 AND p.owner_id = $3
);
`
	var ok bool
	if err := r.db.QueryRow(ctx, q, chatID, projectID, ownerID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
