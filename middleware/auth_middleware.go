package middleware

import (
	"context"
	"errors"

	"storefront-admin/common/auth"
	apperrors "storefront-admin/common/errors"
	"storefront-admin/models"

	"github.com/gin-gonic/gin"
)

// SessionContextKey is the gin context key holding the admin session.
const SessionContextKey = "session"

type sessionKey struct{}

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Session(token string) (auth.Session, error)
}

// AdminAuth requires a valid admin bearer token. Missing, malformed and
// expired tokens are 401; a valid token for another role is 403.
func AdminAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperrors.Respond(c, apperrors.ErrUnauthorized)
			return
		}

		session, err := resolver.Session(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apperrors.Respond(c, apperrors.ErrTokenExpired)
				return
			}
			apperrors.Respond(c, apperrors.ErrInvalidToken)
			return
		}
		if session.Role != models.RoleAdmin {
			apperrors.Respond(c, apperrors.ErrForbidden)
			return
		}

		c.Set(SessionContextKey, session)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by AdminAuth, if any.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// SessionFrom returns the session of the current request.
func SessionFrom(c *gin.Context) (auth.Session, bool) {
	if v, exists := c.Get(SessionContextKey); exists {
		if s, ok := v.(auth.Session); ok {
			return s, true
		}
	}
	return SessionFromContext(c.Request.Context())
}

// Actor names the signed-in admin for audit events.
func Actor(c *gin.Context) string {
	s, ok := SessionFrom(c)
	if !ok {
		return ""
	}
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}
