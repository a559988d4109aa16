package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
	"github.com/figmachat/figmachat-backend/internal/auth"
	"github.com/figmachat/figmachat-backend/internal/demos/domain"
	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
)

type fakeDemos struct {
	demo    *domain.Demo
	err     error
	listed  []domain.Demo
	lastArg [3]string
}

func (f *fakeDemos) List(_ context.Context, ownerID, projectID, chatID string) ([]domain.Demo, error) {
	f.lastArg = [3]string{ownerID, projectID, chatID}
	return f.listed, f.err
}

func (f *fakeDemos) CreateForOwner(_ context.Context, ownerID, projectID, chatID, _, _ string) (*domain.Demo, error) {
	f.lastArg = [3]string{ownerID, projectID, chatID}
	return f.demo, f.err
}

func setup(svc DemoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	r := gin.New()
	g := r.Group("/projects/:project_id/chats/:chat_id", func(c *gin.Context) {
		c.Set(auth.CtxFirebaseUID, "uid-1")
		c.Next()
	})
	New(svc).Register(g)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects/prj_1/chats/cht_1/web-demo", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDemo(t *testing.T) {
	t.Run("not requested", func(t *testing.T) {
		svc := &fakeDemos{}
		w := post(setup(svc), `{"user_message":"hi","assistant_message":"hello"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"should_create":false}`, w.Body.String())
		assert.Equal(t, [3]string{"uid-1", "prj_1", "cht_1"}, svc.lastArg)
	})

	t.Run("created", func(t *testing.T) {
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		svc := &fakeDemos{demo: &domain.Demo{ID: "demo_1", Name: "Demo: blog", Description: "Generated from: hi", HTMLContent: "<html>", CreatedAt: created}}
		w := post(setup(svc), `{"user_message":"hi","assistant_message":"hello"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"web_demo":{"id":"demo_1","name":"Demo: blog","description":"Generated from: hi","created_at":"2025-01-02T03:04:05Z"}}`, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		w := post(setup(&fakeDemos{}), `{"user_message":"hi"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pipeline failure", func(t *testing.T) {
		w := post(setup(&fakeDemos{err: apierr.Upstream("generate demo", errors.New("quota"))}), `{"user_message":"hi","assistant_message":"x"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestListDemos(t *testing.T) {
	svc := &fakeDemos{listed: []domain.Demo{{ID: "demo_1", HTMLContent: "<p>"}}}
	r := setup(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/prj_1/chats/cht_1/web-demo", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		OK       bool          `json:"ok"`
		WebDemos []domain.Demo `json:"web_demos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.WebDemos, 1)
	assert.Equal(t, "<p>", resp.WebDemos[0].HTMLContent)
	assert.Equal(t, [3]string{"uid-1", "prj_1", "cht_1"}, svc.lastArg)
}
