package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront-admin/common/auth"
	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ITokenService issues and parses admin access tokens.
type ITokenService interface {
	Issue(userID, email, role string) (string, auth.Session, error)
	Parse(tokenStr string) (auth.Session, error)
	TTL() time.Duration
}

// AuthService signs admins in and resolves their sessions.
type AuthService struct {
	notifier
	users  repository.UserRepository
	tokens ITokenService
}

func NewAuthService(users repository.UserRepository, tokens ITokenService, metrics Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		notifier: notifier{metrics: metrics, logger: logger},
		users:    users,
		tokens:   tokens,
	}
}

// Login checks the credentials and issues an access token. Unknown emails,
// wrong passwords and inactive accounts all yield the same 401.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, *ServiceError) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, newServiceError(http.StatusUnprocessableEntity, "Email and password are required")
	}

	invalid := newServiceError(http.StatusUnauthorized, "Invalid email or password")
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Failed to look up admin", zap.Error(err))
			return nil, newServiceError(http.StatusInternalServerError, "Failed to sign in")
		}
		s.count(aws_pkg.MetricLoginFailures)
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.count(aws_pkg.MetricLoginFailures)
		return nil, invalid
	}
	if !user.IsActive || user.Role != models.RoleAdmin {
		s.count(aws_pkg.MetricLoginFailures)
		s.logger.Warn("Login refused for inactive or non-admin account", zap.String("user_id", user.ID.String()))
		return nil, invalid
	}

	token, _, err := s.tokens.Issue(user.ID.String(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to sign in")
	}

	s.logger.Info("Admin signed in", zap.String("user_id", user.ID.String()))
	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Session parses a bearer token. The error is auth.ErrTokenExpired or
// auth.ErrInvalidToken.
func (s *AuthService) Session(tokenStr string) (auth.Session, error) {
	return s.tokens.Parse(tokenStr)
}
