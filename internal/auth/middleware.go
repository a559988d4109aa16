package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	"github.com/figmachat/figmachat-backend/internal/users"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

type Options struct {
	// Verifier may be nil when only the development header is accepted.
	Verifier TokenVerifier
	Users    UserEnsurer
	// DevHeader accepts X-User-Id when no bearer token is present.
	DevHeader bool
	Log       *logger.Logger
}

var errNoIdentity = errors.New("missing authorization token")

// RequireUser resolves the caller identity and rejects the request with 401
// before any handler (and therefore any storage mutation) runs.
func RequireUser(opt Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, email, err := resolveIdentity(c, opt)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
			return
		}

		if opt.Users != nil {
			dbID, err := opt.Users.EnsureUser(c.Request.Context(), users.UpsertUser{
				FirebaseUID: uid,
				Email:       email,
				DisplayName: c.GetHeader("X-User-Name"),
				PhotoURL:    c.GetHeader("X-User-Photo"),
			})
			if err != nil {
				if opt.Log != nil {
					opt.Log.For(c.Request.Context()).Error("ensure user failed", "firebase_uid", uid, "error", err)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
				return
			}
			c.Set(CtxUserDBID, dbID)
		}

		c.Set(CtxFirebaseUID, uid)
		if email != "" {
			c.Set(CtxEmail, email)
		}
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, opt Options) (uid, email string, err error) {
	token := extractToken(c)
	if token != "" && opt.Verifier != nil {
		decoded, err := opt.Verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil || decoded == nil || strings.TrimSpace(decoded.UID) == "" {
			return "", "", errors.New("invalid token")
		}
		if e, ok := decoded.Claims["email"].(string); ok {
			email = e
		}
		return decoded.UID, email, nil
	}

	if opt.DevHeader {
		if uid := strings.TrimSpace(c.GetHeader("X-User-Id")); uid != "" {
			return uid, strings.TrimSpace(c.GetHeader("X-User-Email")), nil
		}
	}
	return "", "", errNoIdentity
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
