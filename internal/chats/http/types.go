package http

import (
	"context"
	"io"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

// ChatService is satisfied by *service.ChatService.
type ChatService interface {
	Create(ctx context.Context, ownerID, projectID, content string) (*domain.Chat, error)
	List(ctx context.Context, ownerID, projectID string) ([]domain.Summary, error)
	Get(ctx context.Context, ref domain.Ref) (*domain.Chat, error)
	Rename(ctx context.Context, ref domain.Ref, title string) (*domain.Summary, error)
	Delete(ctx context.Context, ref domain.Ref) error
}

// MessageSender is satisfied by *service.MessagePipeline.
type MessageSender interface {
	SendMessage(ctx context.Context, ref domain.Ref, content string) (io.ReadCloser, error)
}

// Handler bundles the dependencies for chat HTTP endpoints.
type Handler struct {
	chats    ChatService
	pipeline MessageSender
	log      *logger.Logger
}

func New(chats ChatService, pipeline MessageSender, log *logger.Logger) *Handler {
	return &Handler{chats: chats, pipeline: pipeline, log: log}
}

type contentReq struct {
	Content string `json:"content" binding:"required,maxbytes"`
}

type renameReq struct {
	Title string `json:"title" binding:"required,maxbytes=1024"`
}
