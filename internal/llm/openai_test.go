package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)

		if strings.Contains(string(body), `"stream":true`) {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, part := range []string{"Hel", "lo"} {
				fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"Portfolio Ideas"},"finish_reason":"stop"}]}`)
	}))
}

func TestOpenAIClient(t *testing.T) {
	srv := newOpenAIServer(t)
	defer srv.Close()

	client, err := NewOpenAIClient("sk-test", "m", srv.URL+"/v1")
	require.NoError(t, err)

	t.Run("complete", func(t *testing.T) {
		out, err := client.Complete(context.Background(), "title")
		require.NoError(t, err)
		assert.Equal(t, "Portfolio Ideas", out)
	})

	t.Run("stream", func(t *testing.T) {
		rc, err := client.StreamComplete(context.Background(), "hi")
		require.NoError(t, err)
		defer rc.Close()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "{\"chunk\":\"Hel\"}\n{\"chunk\":\"lo\"}\n", string(body))
	})
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(" ", "", "")
	assert.Error(t, err)
}
