package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
)

type Repo struct {
	db postgres.DBTX
}

func NewRepo(db postgres.DBTX) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EnsureUser upserts the caller's profile and returns the internal user id.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if strings.TrimSpace(u.FirebaseUID) == "" {
		return "", fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

const userColumns = `id::text, firebase_uid, email, display_name, photo_url, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByFirebaseUID retrieves a user by Firebase UID
func (r *Repo) GetByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	q := `select ` + userColumns + ` from users where firebase_uid = $1;`
	return scanUser(r.db.QueryRow(ctx, q, uid))
}

// UpdateProfile overwrites the provided fields and keeps the rest.
func (r *Repo) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*User, error) {
	q := `
update users
set
  display_name = coalesce($2, display_name),
  photo_url = coalesce($3, photo_url),
  updated_at = now()
where firebase_uid = $1
returning ` + userColumns + `;`
	return scanUser(r.db.QueryRow(ctx, q, uid, upd.DisplayName, upd.PhotoURL))
}
