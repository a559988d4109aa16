package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
	"github.com/figmachat/figmachat-backend/internal/llm"
	"github.com/figmachat/figmachat-backend/internal/observability"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	"github.com/figmachat/figmachat-backend/internal/stream"
)

const defaultPersistTimeout = 30 * time.Second

// ThreadStore is the part of the chat store the message pipeline uses.
type ThreadStore interface {
	FindThread(ctx context.Context, ref domain.Ref) (*domain.Thread, error)
	AppendMessages(ctx context.Context, chatID string, msgs ...domain.Message) error
}

// DemoTrigger schedules web demo detection for a finished turn. It must not block.
type DemoTrigger interface {
	Trigger(ctx context.Context, projectID, chatID, userMessage, assistantMessage string)
}

// MessagePipeline turns a user message into a relayed AI stream and stores
// both sides of the turn.
type MessagePipeline struct {
	store   ThreadStore
	ai      llm.Gateway
	demos   DemoTrigger
	metrics *observability.Metrics
	log     *logger.Logger
	tracer  trace.Tracer

	persistTimeout time.Duration
	inflight       sync.WaitGroup
}

// NewMessagePipeline wires the pipeline. demos and metrics may be nil.
func NewMessagePipeline(store ThreadStore, ai llm.Gateway, demos DemoTrigger, metrics *observability.Metrics, log *logger.Logger) *MessagePipeline {
	return &MessagePipeline{
		store:          store,
		ai:             ai,
		demos:          demos,
		metrics:        metrics,
		log:            log.With("component", "MessagePipeline"),
		tracer:         otel.Tracer("figmachat/chats"),
		persistTimeout: defaultPersistTimeout,
	}
}

// SendMessage stores the user message, starts the AI stream and returns the
// relayed stream. Everything up to the stream start happens before it returns;
// any failure there is returned as an error and nothing is streamed.
//
// Once the returned stream ends (the AI stream finished or failed, or the
// reader was closed) the assistant message is stored with whatever text was
// received, and demo detection is triggered. Callers must Close the stream.
func (p *MessagePipeline) SendMessage(ctx context.Context, ref domain.Ref, content string) (io.ReadCloser, error) {
	if strings.TrimSpace(ref.OwnerID) == "" {
		return nil, apierr.Unauthorized("send message", errors.New("missing caller identity"))
	}
	if strings.TrimSpace(content) == "" {
		return nil, apierr.InvalidArgument("send message", errors.New("missing content"))
	}

	ctx, span := p.tracer.Start(ctx, "chats.SendMessage", trace.WithAttributes(
		attribute.String("chat.id", ref.ChatID),
		attribute.String("project.id", ref.ProjectID),
	))
	fail := func(err error) (io.ReadCloser, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		p.metrics.StreamRejected()
		return nil, err
	}

	thread, err := p.store.FindThread(ctx, ref)
	if err != nil {
		return fail(storeError("load chat", err))
	}

	userMsg := domain.NewUserMessage(content, thread.HasContext())
	if err := p.store.AppendMessages(ctx, thread.ID, userMsg); err != nil {
		return fail(storeError("store user message", err))
	}

	// The transcript is the history as read above, without the new message.
	prompt := BuildPrompt(thread.ProjectName, thread.ProjectContext, thread.Messages, content)

	// The relay outlives the request; a client disconnect ends it through the
	// failed write instead of cancelling the AI call.
	detached := context.WithoutCancel(ctx)
	src, err := p.ai.StreamComplete(detached, prompt)
	if err != nil {
		return fail(apierr.Upstream("start ai stream", err))
	}

	log := p.log.For(ctx).With("chat_id", thread.ID, "project_id", thread.ProjectID)
	started := time.Now()
	p.metrics.StreamStarted()
	p.inflight.Add(1)

	return stream.Pipe(src, func(res stream.Result) {
		defer p.inflight.Done()
		defer span.End()
		p.finish(detached, log, span, ref, content, res, started)
	}), nil
}

func (p *MessagePipeline) finish(ctx context.Context, log *logger.Logger, span trace.Span, ref domain.Ref, content string, res stream.Result, started time.Time) {
	status := observability.StreamOK
	switch {
	case res.Err == nil:
	case errors.Is(res.Err, stream.ErrClientGone):
		status = observability.StreamClientGone
		log.Info("client went away mid-stream, keeping partial answer", "chars", len(res.Text))
	default:
		status = observability.StreamUpstreamErr
		span.RecordError(res.Err)
		log.Warn("ai stream failed mid-stream, keeping partial answer", "error", res.Err, "chars", len(res.Text))
	}
	span.SetAttributes(attribute.Int("stream.chunks", res.Chunks), attribute.Int64("stream.bytes", res.Bytes))

	persistCtx, cancel := context.WithTimeout(ctx, p.persistTimeout)
	defer cancel()

	assistant := domain.NewAssistantMessage(res.Text)
	if err := p.store.AppendMessages(persistCtx, ref.ChatID, assistant); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store assistant message")
		log.Error("store assistant message failed", "error", err)
		p.metrics.StreamFinished(observability.StreamPersistErr, res.Chunks, time.Since(started))
		return
	}
	p.metrics.StreamFinished(status, res.Chunks, time.Since(started))
	log.Debug("assistant message stored", "message_id", assistant.ID, "chunks", res.Chunks)

	if p.demos != nil {
		p.demos.Trigger(ctx, ref.ProjectID, ref.ChatID, content, res.Text)
	}
}

// Drain waits until every started stream has stored its assistant message.
func (p *MessagePipeline) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apierr.NotFound(op, err)
	}
	return apierr.Persistence(op, err)
}
