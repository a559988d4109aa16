// Package llm is the AI completion gateway. Every provider exposes a one-shot
// completion and a streaming completion whose body is newline-delimited JSON
// envelopes of the form {"chunk": "..."}.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/figmachat/figmachat-backend/config"
)

type Gateway interface {
	// Complete returns the full completion text in one round trip.
	Complete(ctx context.Context, prompt string) (string, error)
	// StreamComplete returns an NDJSON chunk stream. An error here means the
	// stream never started; failures after that surface as read errors.
	// Closing the reader stops the upstream generation.
	StreamComplete(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// Chunk is the wire envelope of one streamed fragment.
type Chunk struct {
	Chunk string `json:"chunk"`
}

var ErrEmptyResponse = errors.New("llm returned no content")

// EncodeChunk renders one NDJSON line, newline included.
func EncodeChunk(text string) ([]byte, error) {
	b, err := json.Marshal(Chunk{Chunk: text})
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeChunk(w io.Writer, text string) error {
	line, err := EncodeChunk(text)
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}

// New builds the gateway selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig) (Gateway, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// streamReader ties the pipe handed to callers to the cancel func of the
// upstream request.
type streamReader struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (s *streamReader) Close() error {
	s.cancel()
	return s.PipeReader.Close()
}
