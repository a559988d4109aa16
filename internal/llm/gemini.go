package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type GeminiClient struct {
	models geminiModels
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{models: client.Models, model: model}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}

func (g *GeminiClient) StreamComplete(ctx context.Context, prompt string) (io.ReadCloser, error) {
	sctx, cancel := context.WithCancel(ctx)
	next, stop := iter.Pull2(g.models.GenerateContentStream(sctx, g.model, genai.Text(prompt), nil))

	// Pull the first response here so a request that never starts fails the call.
	resp, err, ok := next()
	if ok && err != nil {
		stop()
		cancel()
		return nil, fmt.Errorf("gemini stream: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer cancel()
		defer stop()
		for ok {
			if err != nil {
				pw.CloseWithError(fmt.Errorf("gemini stream: %w", err))
				return
			}
			if text := resp.Text(); text != "" {
				if werr := writeChunk(pw, text); werr != nil {
					return
				}
			}
			resp, err, ok = next()
		}
		pw.Close()
	}()

	return &streamReader{PipeReader: pr, cancel: cancel}, nil
}
