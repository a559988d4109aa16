package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
	projectdomain "github.com/figmachat/figmachat-backend/internal/projects/domain"
)

type memStore struct {
	mu        sync.Mutex
	chats     map[string]*domain.Thread
	owners    map[string]string // project id -> owner
	appendErr func(msgs []domain.Message) error
}

func newMemStore() *memStore {
	return &memStore{chats: map[string]*domain.Thread{}, owners: map[string]string{}}
}

func (m *memStore) seed(ref domain.Ref, projectContext json.RawMessage, history ...domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[ref.ProjectID] = ref.OwnerID
	m.chats[ref.ChatID] = &domain.Thread{
		Chat:           domain.Chat{ID: ref.ChatID, ProjectID: ref.ProjectID, Title: "t", Messages: append([]domain.Message{}, history...)},
		ProjectName:    "Shop",
		ProjectContext: projectContext,
	}
}

func (m *memStore) messages(chatID string) []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message{}, m.chats[chatID].Messages...)
}

func (m *memStore) FindThread(_ context.Context, ref domain.Ref) (*domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.chats[ref.ChatID]
	if !ok || t.ProjectID != ref.ProjectID || m.owners[t.ProjectID] != ref.OwnerID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	cp.Messages = append([]domain.Message{}, t.Messages...)
	return &cp, nil
}

func (m *memStore) AppendMessages(_ context.Context, chatID string, msgs ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		if err := m.appendErr(msgs); err != nil {
			return err
		}
	}
	t, ok := m.chats[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Messages = append(t.Messages, msgs...)
	return nil
}

func (m *memStore) Create(_ context.Context, projectID, title string, msgs []domain.Message) (*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "cht_" + string(rune('a'+len(m.chats)))
	t := &domain.Thread{Chat: domain.Chat{ID: id, ProjectID: projectID, Title: title, Messages: msgs, CreatedAt: time.Now()}}
	m.chats[id] = t
	c := t.Chat
	return &c, nil
}

func (m *memStore) List(_ context.Context, projectID string) ([]domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Summary
	for _, t := range m.chats {
		if t.ProjectID == projectID {
			out = append(out, domain.Summary{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt})
		}
	}
	return out, nil
}

func (m *memStore) UpdateTitle(ctx context.Context, ref domain.Ref, title string) (*domain.Summary, error) {
	if _, err := m.FindThread(ctx, ref); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[ref.ChatID].Title = title
	return &domain.Summary{ID: ref.ChatID, Title: title}, nil
}

func (m *memStore) Delete(ctx context.Context, ref domain.Ref) (bool, error) {
	if _, err := m.FindThread(ctx, ref); err != nil {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, ref.ChatID)
	return true, nil
}

// fakeGateway streams the configured parts, one per Read.
type fakeGateway struct {
	mu          sync.Mutex
	prompts     []string
	parts       []string
	streamErr   error
	midErr      error
	complete    string
	completeErr error
	// beforeStream runs when StreamComplete is called.
	beforeStream func()
}

func (g *fakeGateway) Complete(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.complete, g.completeErr
}

func (g *fakeGateway) StreamComplete(_ context.Context, prompt string) (io.ReadCloser, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.beforeStream != nil {
		g.beforeStream()
	}
	if g.streamErr != nil {
		return nil, g.streamErr
	}
	return &partsStream{parts: append([]string{}, g.parts...), end: g.midErr}, nil
}

func (g *fakeGateway) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type partsStream struct {
	parts []string
	end   error
}

func (p *partsStream) Read(b []byte) (int, error) {
	if len(p.parts) == 0 {
		if p.end != nil {
			return 0, p.end
		}
		return 0, io.EOF
	}
	n := copy(b, p.parts[0])
	p.parts = p.parts[1:]
	return n, nil
}

func (p *partsStream) Close() error { return nil }

type demoCall struct {
	ProjectID, ChatID, User, Assistant string
}

type recordingTrigger struct {
	mu    sync.Mutex
	calls []demoCall
}

func (r *recordingTrigger) Trigger(_ context.Context, projectID, chatID, userMessage, assistantMessage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, demoCall{projectID, chatID, userMessage, assistantMessage})
}

func (r *recordingTrigger) snapshot() []demoCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]demoCall{}, r.calls...)
}

type memProjects map[string]*projectdomain.Project

func (m memProjects) FindByOwner(_ context.Context, projectID, ownerID string) (*projectdomain.Project, error) {
	p, ok := m[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, projectdomain.ErrNotFound
	}
	return p, nil
}

var errBoom = errors.New("boom")

func chunks(texts ...string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		b, _ := json.Marshal(map[string]string{"chunk": t})
		out[i] = string(b) + "\n"
	}
	return out
}

func joined(parts []string) string { return strings.Join(parts, "") }
