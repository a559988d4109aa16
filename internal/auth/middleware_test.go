package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/figmachat/figmachat-backend/internal/users"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

type fakeUsers struct {
	calls []users.UpsertUser
	err   error
}

func (f *fakeUsers) EnsureUser(_ context.Context, u users.UpsertUser) (string, error) {
	f.calls = append(f.calls, u)
	return "db-" + u.FirebaseUID, f.err
}

func newAuthRouter(opt Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireUser(opt))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": UserFirebaseUID(c), "db_id": UserDBID(c)})
	})
	return r
}

func TestRequireUser(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "uid-1", Claims: map[string]interface{}{"email": "a@example.com"}},
	}}

	t.Run("missing token is 401 and never touches users", func(t *testing.T) {
		u := &fakeUsers{}
		r := newAuthRouter(Options{Verifier: verifier, Users: u})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, u.calls)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		r := newAuthRouter(Options{Verifier: verifier})

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid token")
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		u := &fakeUsers{}
		r := newAuthRouter(Options{Verifier: verifier, Users: u})

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"uid":"uid-1","db_id":"db-uid-1"}`, w.Body.String())
		if assert.Len(t, u.calls, 1) {
			assert.Equal(t, "a@example.com", u.calls[0].Email)
		}
	})

	t.Run("dev header only when enabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", "dev-user")

		w := httptest.NewRecorder()
		newAuthRouter(Options{}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		newAuthRouter(Options{DevHeader: true}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "dev-user")
	})

	t.Run("ensure user failure is 500", func(t *testing.T) {
		r := newAuthRouter(Options{Verifier: verifier, Users: &fakeUsers{err: errors.New("db down")}})

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
