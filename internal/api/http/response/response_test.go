package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/figmachat/figmachat-backend/internal/platform/apierr"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", apierr.NotFound("get chat", errors.New("chat not found")), http.StatusNotFound, `{"ok":false,"error":"get chat: chat not found"}`},
		{"upstream", apierr.Upstream("stream", errors.New("quota")), http.StatusBadGateway, `{"ok":false,"error":"stream: quota"}`},
		{"untyped", errors.New("pq: secret detail"), http.StatusInternalServerError, `{"ok":false,"error":"internal error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
