package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/infra/security"
	"github.com/arklim/software-access-portal/internal/repository"
)

var (
	// ErrValidation marks malformed or missing input; the wrapped message
	// names the offending field.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials indicates the username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates the requested username already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService coordinates signup, login, and profile lookups.
type AuthService struct {
	users       port.UserRepository
	permissions port.PermissionRepository
	tokens      *security.TokenManager
	passwords   *security.PasswordValidator
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	tokens *security.TokenManager,
	passwords *security.PasswordValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock injects a custom clock, primarily for testing.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithPermissions enables granted-permission lookups on the profile.
func (s *AuthService) WithPermissions(permissions port.PermissionRepository) *AuthService {
	s.permissions = permissions
	return s
}

// SignUp registers a new account. The role defaults to Employee when not
// provided.
func (s *AuthService) SignUp(ctx context.Context, username, password, rawRole string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if rawRole == "" {
		rawRole = string(domain.RoleEmployee)
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: role must be Employee, Manager, or Admin", ErrValidation)
	}

	if s.passwords != nil {
		if err := s.passwords.Validate(password); err != nil {
			return domain.User{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			UserID:       user.ID,
			Username:     user.Username,
			Role:         user.Role,
			RegisteredAt: user.CreatedAt,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event failed", zap.Error(err))
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate validates credentials and issues an access token.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return "", domain.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return "", domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return token, sanitized, nil
}

// Profile returns the account for an authenticated user id.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return sanitized, nil
}

// ParseAccessToken validates a bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(tokenString string) (*security.IdentityClaims, error) {
	return s.tokens.Parse(tokenString)
}

// Permissions lists the access levels granted to the user, newest first.
// Returns an empty slice when no permission store is wired.
func (s *AuthService) Permissions(ctx context.Context, userID string) ([]domain.UserPermission, error) {
	if s.permissions == nil {
		return []domain.UserPermission{}, nil
	}

	permissions, err := s.permissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return permissions, nil
}

// TokenTTL reports the configured access token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
