package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const TokenTypeAccess = "access"

var (
	ErrSecretMissing = errors.New("JWT secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// Session is the authenticated admin behind a request.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenManager issues and parses HMAC-signed access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

// NewTokenManager returns a manager for secret. A nil clock means time.Now.
func NewTokenManager(secret string, ttl time.Duration, now Clock) (*TokenManager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if now == nil {
		now = time.Now
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs an access token for the given admin.
func (m *TokenManager) Issue(userID, email, role string) (string, Session, error) {
	issuedAt := m.now()
	session := Session{UserID: userID, Email: email, Role: role, ExpiresAt: issuedAt.Add(m.ttl)}
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"typ":   TokenTypeAccess,
		"iat":   issuedAt.Unix(),
		"exp":   session.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, session, nil
}

// Parse validates tokenStr and returns its session. Expiry is checked
// against the manager's clock, not the wall clock.
func (m *TokenManager) Parse(tokenStr string) (Session, error) {
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != TokenTypeAccess {
		return Session{}, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	session := Session{ExpiresAt: time.Unix(int64(exp), 0)}
	session.UserID, _ = claims["sub"].(string)
	session.Email, _ = claims["email"].(string)
	session.Role, _ = claims["role"].(string)
	if session.UserID == "" {
		return Session{}, ErrInvalidToken
	}
	if session.Expired(m.now()) {
		return Session{}, ErrTokenExpired
	}
	return session, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
