package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
	"github.com/figmachat/figmachat-backend/internal/platform/ids"
	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
)

// ChatRepository persists chats with their messages as a jsonb array.
type ChatRepository struct {
	db postgres.DBTX
}

func NewChatRepository(db postgres.DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindThread loads the chat, its messages and the parent project's name and
// context, scoped to the owner. Anything outside the ownership chain is ErrNotFound.
func (r *ChatRepository) FindThread(ctx context.Context, ref domain.Ref) (*domain.Thread, error) {
	const q = `
SELECT c.id, c.project_id, c.title, c.messages, c.created_at, p.name, p.context
FROM chats c
JOIN projects p ON p.id = c.project_id
WHERE c.id = $1 AND c.project_id = $2 AND p.owner_id = $3;
`
	var (
		t        domain.Thread
		messages []byte
		pctx     []byte
	)
	err := r.db.QueryRow(ctx, q, ref.ChatID, ref.ProjectID, ref.OwnerID).
		Scan(&t.ID, &t.ProjectID, &t.Title, &messages, &t.CreatedAt, &t.ProjectName, &pctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := decodeMessages(messages, &t.Messages); err != nil {
		return nil, err
	}
	t.ProjectContext = pctx
	return &t, nil
}

// AppendMessages pushes msgs onto the end of the chat's message list in a
// single statement, so concurrent appends never overwrite each other.
func (r *ChatRepository) AppendMessages(ctx context.Context, chatID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	const q = `UPDATE chats SET messages = messages || $2::jsonb WHERE id = $1;`
	tag, err := r.db.Exec(ctx, q, chatID, string(payload))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create inserts a chat under projectID. The caller is responsible for the
// project ownership check.
func (r *ChatRepository) Create(ctx context.Context, projectID, title string, msgs []domain.Message) (*domain.Chat, error) {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}

	for i := 0; i < 5; i++ {
		id, err := ids.NewID("cht")
		if err != nil {
			return nil, err
		}

		const q = `
INSERT INTO chats (id, project_id, title, messages)
VALUES ($1, $2, $3, $4::jsonb)
RETURNING created_at;
`
		c := domain.Chat{ID: id, ProjectID: projectID, Title: title, Messages: msgs}
		err = r.db.QueryRow(ctx, q, id, projectID, title, string(payload)).Scan(&c.CreatedAt)
		if err == nil {
			return &c, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to generate unique chat id")
}

// List returns chat summaries for a project, newest first.
func (r *ChatRepository) List(ctx context.Context, projectID string) ([]domain.Summary, error) {
	const q = `
SELECT id, title, created_at
FROM chats
WHERE project_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Summary, 0, 16)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ChatRepository) UpdateTitle(ctx context.Context, ref domain.Ref, title string) (*domain.Summary, error) {
	const q = `
UPDATE chats c
SET title = $4
FROM projects p
WHERE c.id = $1 AND c.project_id = $2 AND p.id = c.project_id AND p.owner_id = $3
RETURNING c.id, c.title, c.created_at;
`
	var s domain.Summary
	err := r.db.QueryRow(ctx, q, ref.ChatID, ref.ProjectID, ref.OwnerID, title).Scan(&s.ID, &s.Title, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes the chat and, by cascade, its demos.
func (r *ChatRepository) Delete(ctx context.Context, ref domain.Ref) (bool, error) {
	const q = `
DELETE FROM chats c
USING projects p
WHERE c.id = $1 AND c.project_id = $2 AND p.id = c.project_id AND p.owner_id = $3;
`
	tag, err := r.db.Exec(ctx, q, ref.ChatID, ref.ProjectID, ref.OwnerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func decodeMessages(raw []byte, out *[]domain.Message) error {
	if len(raw) == 0 {
		*out = []domain.Message{}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode messages: %w", err)
	}
	if *out == nil {
		*out = []domain.Message{}
	}
	return nil
}
