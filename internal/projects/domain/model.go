package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("project not found")

// Project binds a name and a Figma file link to the snapshot of that file
// fetched at creation time. It is owned by exactly one user.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	FigmaLink string          `json:"figma_link"`
	Context   json.RawMessage `json:"-"`
	OwnerID   string          `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

// HasContext reports whether a Figma snapshot is stored.
func (p *Project) HasContext() bool {
	if p == nil {
		return false
	}
	trimmed := bytes.TrimSpace(p.Context)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (p *Project) Summary() Summary {
	return Summary{
		ID:         p.ID,
		Name:       p.Name,
		FigmaLink:  p.FigmaLink,
		HasContext: p.HasContext(),
		CreatedAt:  p.CreatedAt,
	}
}

type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FigmaLink  string    `json:"figma_link"`
	HasContext bool      `json:"has_context"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateInput struct {
	Name      string
	FigmaLink string
	Context   json.RawMessage
	OwnerID   string
}
