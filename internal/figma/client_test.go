package figma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figmachat/figmachat-backend/config"
)

func TestExtractFileKey(t *testing.T) {
	cases := map[string]string{
		"https://www.figma.com/file/AbC123/My-File":       "AbC123",
		"https://www.figma.com/design/XyZ789?node-id=1-2": "XyZ789",
		"https://figma.com/design/Key1":                   "Key1",
	}
	for in, want := range cases {
		got, ok := ExtractFileKey(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ExtractFileKey("https://example.com/file/abc")
	assert.False(t, ok)
}

func TestNewClient_Disabled(t *testing.T) {
	assert.Nil(t, NewClient(config.FigmaConfig{}))
}

func TestClient_FetchFileData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/Good1":
			assert.Equal(t, "tok", r.Header.Get("X-Figma-Token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"Design","document":{"id":"0:0"}}`))
		case "/files/Text1":
			_, _ = w.Write([]byte("<html>"))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c := NewClient(config.FigmaConfig{APIKey: "tok"}).WithBaseURL(srv.URL)

	t.Run("returns raw payload", func(t *testing.T) {
		data, err := c.FetchFileData(context.Background(), "https://www.figma.com/file/Good1/x")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Design","document":{"id":"0:0"}}`, string(data))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := c.FetchFileData(context.Background(), "not a link")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("non-2xx is a fetch error", func(t *testing.T) {
		_, err := c.FetchFileData(context.Background(), "https://www.figma.com/file/Nope1/x")
		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusForbidden, fe.Status)
	})

	t.Run("non-json body is a fetch error", func(t *testing.T) {
		_, err := c.FetchFileData(context.Background(), "https://www.figma.com/file/Text1/x")
		var fe *FetchError
		assert.True(t, errors.As(err, &fe))
	})
}
