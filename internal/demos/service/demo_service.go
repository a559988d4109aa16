package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/figmachat/figmachat-backend/internal/demos/domain"
	"github.com/figmachat/figmachat-backend/internal/llm"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

type Store interface {
	Create(ctx context.Context, in domain.CreateInput) (*domain.Demo, error)
	List(ctx context.Context, ownerID, projectID, chatID string) ([]domain.Demo, error)
	ChatOwned(ctx context.Context, ownerID, projectID, chatID string) (bool, error)
}

// Publisher announces stored demos. Optional.
type Publisher interface {
	DemoCreated(ctx context.Context, d *domain.Demo) error
}

// DemoService detects web demo requests in a chat turn and generates them.
type DemoService struct {
	store  Store
	ai     llm.Gateway
	events Publisher
	log    *logger.Logger
}

func NewDemoService(store Store, ai llm.Gateway, events Publisher, log *logger.Logger) *DemoService {
	return &DemoService{
		store:  store,
		ai:     ai,
		events: events,
		log:    log.With("service", "DemoService"),
	}
}

// Classify asks the model whether the turn requested a web demo. Unparseable
// answers count as "no"; only the model call itself can fail.
func (s *DemoService) Classify(ctx context.Context, userMessage, assistantMessage string) (domain.Classification, error) {
	out, err := s.ai.Complete(ctx, classificationPrompt(userMessage, assistantMessage))
	if err != nil {
		return domain.Classification{}, apierr.Upstream("classify demo request", err)
	}
	return domain.ParseClassification(out), nil
}

// MaybeCreate classifies the turn and, if a demo was requested, generates and
// stores it. It returns nil, nil when no demo is wanted.
func (s *DemoService) MaybeCreate(ctx context.Context, projectID, chatID, userMessage, assistantMessage string) (*domain.Demo, error) {
	c, err := s.Classify(ctx, userMessage, assistantMessage)
	if err != nil {
		return nil, err
	}
	if !c.ShouldCreate {
		return nil, nil
	}

	html, err := s.ai.Complete(ctx, generationPrompt(userMessage, assistantMessage, c))
	if err != nil {
		return nil, apierr.Upstream("generate demo", err)
	}

	d, err := s.store.Create(ctx, domain.CreateInput{
		ProjectID:   projectID,
		ChatID:      chatID,
		Name:        c.Name(),
		Description: domain.Description(userMessage),
		HTMLContent: html,
		Metadata:    c.Metadata(userMessage),
	})
	if err != nil {
		return nil, apierr.Persistence("store demo", err)
	}

	if s.events != nil {
		if err := s.events.DemoCreated(ctx, d); err != nil {
			s.log.For(ctx).Warn("publish demo event failed", "demo_id", d.ID, "error", err)
		}
	}
	return d, nil
}

// CreateForOwner runs MaybeCreate on an explicit message pair after checking
// that the chat belongs to ownerID.
func (s *DemoService) CreateForOwner(ctx context.Context, ownerID, projectID, chatID, userMessage, assistantMessage string) (*domain.Demo, error) {
	if strings.TrimSpace(userMessage) == "" || strings.TrimSpace(assistantMessage) == "" {
		return nil, apierr.InvalidArgument("create demo", errors.New("missing required fields"))
	}
	if err := s.checkChat(ctx, ownerID, projectID, chatID); err != nil {
		return nil, err
	}
	return s.MaybeCreate(ctx, projectID, chatID, userMessage, assistantMessage)
}

func (s *DemoService) List(ctx context.Context, ownerID, projectID, chatID string) ([]domain.Demo, error) {
	if err := s.checkChat(ctx, ownerID, projectID, chatID); err != nil {
		return nil, err
	}
	items, err := s.store.List(ctx, ownerID, projectID, chatID)
	if err != nil {
		return nil, apierr.Persistence("list demos", err)
	}
	return items, nil
}

func (s *DemoService) checkChat(ctx context.Context, ownerID, projectID, chatID string) error {
	ok, err := s.store.ChatOwned(ctx, ownerID, projectID, chatID)
	if err != nil {
		return apierr.Persistence("load chat", err)
	}
	if !ok {
		return apierr.NotFound("load chat", domain.ErrNotFound)
	}
	return nil
}

func classificationPrompt(userMessage, assistantMessage string) string {
	return fmt.Sprintf(`Analyze this conversation to determine if the user is requesting a web demo/website creation:

USER: %q
ASSISTANT: %q

Determine if this is a request for:
1. Creating a website/web page
2. Building HTML/CSS demo
3. Making a web application
4. Any other web development task

Look for keywords like: "website", "web page", "demo", "HTML", "CSS", "landing page", "portfolio", "blog", "dashboard"

Respond with ONLY a JSON object:
{
  "isWebDemoRequest": boolean,
  "demoType": "landing_page" | "portfolio" | "blog" | "dashboard" | "other",
  "features": string[],
  "style": "modern" | "minimal" | "colorful" | "professional" | "other",
  "shouldCreate": boolean
}

If it's NOT a web demo request, set "shouldCreate" to false.`, userMessage, assistantMessage)
}

func generationPrompt(userMessage, assistantMessage string, c domain.Classification) string {
	meta := c.Metadata(userMessage)
	return fmt.Sprintf(`Create a complete, functional HTML/CSS website based on this request:

USER REQUEST: %q
ASSISTANT RESPONSE: %q
DEMO TYPE: %s
FEATURES: %s
STYLE: %s

Requirements:
1. Create a complete, standalone HTML file with embedded CSS
2. Make it responsive and modern
3. Include all necessary functionality
4. Use semantic HTML5
5. Include modern CSS features (flexbox, grid, animations)
6. Make it visually appealing and professional
7. Ensure it works without external dependencies

Return ONLY the complete HTML file with embedded CSS. No explanations, just the HTML code.`,
		userMessage, assistantMessage, meta.DemoType, strings.Join(meta.Features, ", "), meta.Style)
}
