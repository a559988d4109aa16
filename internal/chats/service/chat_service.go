package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
	"github.com/figmachat/figmachat-backend/internal/llm"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	projectdomain "github.com/figmachat/figmachat-backend/internal/projects/domain"
)

const (
	DefaultTitle  = "New Chat"
	maxTitleRunes = 80
)

type ChatStore interface {
	ThreadStore
	Create(ctx context.Context, projectID, title string, msgs []domain.Message) (*domain.Chat, error)
	List(ctx context.Context, projectID string) ([]domain.Summary, error)
	UpdateTitle(ctx context.Context, ref domain.Ref, title string) (*domain.Summary, error)
	Delete(ctx context.Context, ref domain.Ref) (bool, error)
}

// ProjectLookup resolves a project within the owner's scope.
type ProjectLookup interface {
	FindByOwner(ctx context.Context, projectID, ownerID string) (*projectdomain.Project, error)
}

// ChatService handles chat CRUD. Sending messages goes through MessagePipeline.
type ChatService struct {
	store    ChatStore
	projects ProjectLookup
	ai       llm.Gateway
	log      *logger.Logger
}

func NewChatService(store ChatStore, projects ProjectLookup, ai llm.Gateway, log *logger.Logger) *ChatService {
	return &ChatService{
		store:    store,
		projects: projects,
		ai:       ai,
		log:      log.With("service", "ChatService"),
	}
}

// Create starts a chat whose first message is content. The title is generated
// from the message; any failure falls back to DefaultTitle.
func (s *ChatService) Create(ctx context.Context, ownerID, projectID, content string) (*domain.Chat, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierr.InvalidArgument("create chat", errors.New("missing first message content"))
	}
	project, err := s.project(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	title := s.generateTitle(ctx, content, project.Name)
	first := domain.NewUserMessage(content, project.HasContext())

	c, err := s.store.Create(ctx, project.ID, title, []domain.Message{first})
	if err != nil {
		return nil, apierr.Persistence("create chat", err)
	}
	return c, nil
}

func (s *ChatService) List(ctx context.Context, ownerID, projectID string) ([]domain.Summary, error) {
	if _, err := s.project(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	items, err := s.store.List(ctx, projectID)
	if err != nil {
		return nil, apierr.Persistence("list chats", err)
	}
	return items, nil
}

func (s *ChatService) Get(ctx context.Context, ref domain.Ref) (*domain.Chat, error) {
	t, err := s.store.FindThread(ctx, ref)
	if err != nil {
		return nil, storeError("get chat", err)
	}
	return &t.Chat, nil
}

func (s *ChatService) Rename(ctx context.Context, ref domain.Ref, title string) (*domain.Summary, error) {
	title = clipTitle(strings.TrimSpace(title))
	if title == "" {
		return nil, apierr.InvalidArgument("rename chat", errors.New("title required"))
	}
	out, err := s.store.UpdateTitle(ctx, ref, title)
	if err != nil {
		return nil, storeError("rename chat", err)
	}
	return out, nil
}

func (s *ChatService) Delete(ctx context.Context, ref domain.Ref) error {
	ok, err := s.store.Delete(ctx, ref)
	if err != nil {
		return apierr.Persistence("delete chat", err)
	}
	if !ok {
		return apierr.NotFound("delete chat", domain.ErrNotFound)
	}
	return nil
}

func (s *ChatService) project(ctx context.Context, ownerID, projectID string) (*projectdomain.Project, error) {
	p, err := s.projects.FindByOwner(ctx, projectID, ownerID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrNotFound) {
			return nil, apierr.NotFound("load project", err)
		}
		return nil, apierr.Persistence("load project", err)
	}
	return p, nil
}

func (s *ChatService) generateTitle(ctx context.Context, content, projectName string) string {
	if s.ai == nil {
		return DefaultTitle
	}
	prompt := fmt.Sprintf(`Suggest a short title (at most 6 words) for a chat, based on its first question and the project.
QUESTION: %q
PROJECT NAME: %q
Return only the title, no explanation.`, content, projectName)

	out, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		s.log.For(ctx).Warn("title generation failed, using default", "error", err)
		return DefaultTitle
	}
	if t := TitleFromCompletion(out); t != "" {
		return t
	}
	return DefaultTitle
}

// TitleFromCompletion takes the first non-empty line of a completion, strips
// wrapping quotes and markdown emphasis, and clips it.
func TitleFromCompletion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`*# ")
		if line != "" {
			return clipTitle(line)
		}
	}
	return ""
}

func clipTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleRunes {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxTitleRunes]))
}
