package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/figmachat/figmachat-backend/config"
)

const defaultBaseURL = "https://api.figma.com/v1"

var ErrInvalidURL = errors.New("invalid figma url")

// FetchError reports a failed call to the Figma REST API.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("figma fetch: %v", e.Err)
	}
	return fmt.Sprintf("figma fetch: status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Fetcher interface {
	FetchFileData(ctx context.Context, fileURL string) (json.RawMessage, error)
}

var fileKeyRe = regexp.MustCompile(`figma\.com/(?:file|design)/([a-zA-Z0-9]+)(?:[/?]|$)`)

// ExtractFileKey pulls the file key out of a figma.com file or design link.
func ExtractFileKey(fileURL string) (string, bool) {
	m := fileKeyRe.FindStringSubmatch(strings.TrimSpace(fileURL))
	if m == nil {
		return "", false
	}
	return m[1], true
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns nil when neither a personal token nor an OAuth token is configured.
func NewClient(cfg config.FigmaConfig) *Client {
	switch {
	case cfg.OAuthToken != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken, TokenType: "Bearer"})
		httpClient := oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = 30 * time.Second
		return &Client{baseURL: defaultBaseURL, http: httpClient}
	case cfg.APIKey != "":
		return &Client{baseURL: defaultBaseURL, apiKey: cfg.APIKey, http: &http.Client{Timeout: 30 * time.Second}}
	default:
		return nil
	}
}

// WithBaseURL points the client at another API root. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *Client) FetchFileData(ctx context.Context, fileURL string) (json.RawMessage, error) {
	key, ok := ExtractFileKey(fileURL)
	if !ok {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+key, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("X-Figma-Token", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Err: err}
	}
	if !json.Valid(body) {
		return nil, &FetchError{Status: resp.StatusCode, Err: errors.New("response is not json")}
	}
	return json.RawMessage(body), nil
}
