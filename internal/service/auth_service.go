package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	"gorm.io/gorm"

	"altiushub/internal/auth"
	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
	"altiushub/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// AuthService handles registration, login, and token refresh.
type AuthService interface {
	Register(ctx context.Context, username, password, name string, role model.Role) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	ChangePassword(ctx context.Context, userID uint, newPassword string) error
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.JWTService) AuthService {
	return &authService{users: users, tokens: tokens}
}

// Register creates a new user with a hashed password. The pre-insert lookup
// may race with a concurrent registration; the unique index on username is
// the authoritative guard and its violation also maps to a duplicate error.
func (s *authService) Register(ctx context.Context, username, password, name string, role model.Role) (*model.User, error) {
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateUsername
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", storeErr(err))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hashed,
		Name:         name,
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", storeErr(err))
	}

	return user, nil
}

// Login verifies the password and returns a fresh access token plus a refresh
// token. Lookup failure and password mismatch are indistinguishable to the
// caller.
func (s *authService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.tokens.IssueAccessToken(user.ID, user.Role, true, 0)
	if err != nil {
		return "", "", nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err = s.tokens.IssueRefreshToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Refresh exchanges a valid refresh token for a new non-fresh access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	accessToken, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	return accessToken, nil
}

// ChangePassword replaces the user's password hash.
func (s *authService) ChangePassword(ctx context.Context, userID uint, newPassword string) error {
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	matched, err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": hashed})
	if err != nil {
		return fmt.Errorf("update password: %w", storeErr(err))
	}
	if matched == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// storeErr maps connectivity failures to the store-unavailable sentinel so
// the route layer can answer 503 instead of 500. Covers stale pooled
// connections, timeouts, and dial-level failures such as a refused port.
func storeErr(err error) error {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return apperrors.ErrStoreUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.ErrStoreUnavailable
	}
	return err
}
