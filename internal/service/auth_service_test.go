package service

import (
	"context"
	"database/sql/driver"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"altiushub/internal/auth"
	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func newTestTokens() *auth.JWTService {
	return auth.NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "alice",
			password: "pw123456",
			role:     model.RoleAdmin,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "default role is user",
			username: "bob",
			password: "pw123456",
			role:     "",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "username already taken",
			username: "alice",
			password: "pw123456",
			role:     model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
			},
			expectedError: apperrors.ErrDuplicateUsername,
		},
		{
			name:     "duplicate insert loses the race",
			username: "alice",
			password: "pw123456",
			role:     model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				// pre-check passed but a concurrent registration won; the
				// unique index is the authoritative guard
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateUsername,
		},
		{
			name:          "unknown role rejected",
			username:      "mallory",
			password:      "pw123456",
			role:          "superadmin",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestTokens())
			user, err := svc.Register(context.Background(), tt.username, tt.password, "", tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				if tt.role == "" {
					assert.Equal(t, model.RoleUser, user.Role)
				} else {
					assert.Equal(t, tt.role, user.Role)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("pw123456")
	require.NoError(t, err)
	stored := &model.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "alice",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "pw123456",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			tokens := newTestTokens()
			svc := NewAuthService(mockRepo, tokens)

			accessToken, refreshToken, user, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)

				claims, err := tokens.Verify(accessToken, true)
				require.NoError(t, err)
				assert.Equal(t, stored.ID, claims.UserID)
				assert.Equal(t, model.RoleAdmin, claims.Role)
				assert.True(t, claims.Fresh)

				// the refresh token is valid input for Refresh
				newAccess, err := tokens.Refresh(refreshToken)
				require.NoError(t, err)
				_, err = tokens.Verify(newAccess, true)
				assert.ErrorIs(t, err, auth.ErrTokenNotFresh)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	tokens := newTestTokens()
	svc := NewAuthService(new(MockUserRepository), tokens)

	refresh, err := tokens.IssueRefreshToken(3, model.RoleUser)
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := tokens.Verify(access, false)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.False(t, claims.Fresh)

	// an access token is not a refresh token
	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("updates hash", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdateFields", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
			hash, ok := fields["password_hash"].(string)
			return ok && auth.CheckPassword("new-pw-123", hash)
		})).Return(int64(1), nil)

		svc := NewAuthService(mockRepo, newTestTokens())
		err := svc.ChangePassword(context.Background(), 1, "new-pw-123")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdateFields", mock.Anything, uint(99), mock.Anything).Return(int64(0), nil)

		svc := NewAuthService(mockRepo, newTestTokens())
		err := svc.ChangePassword(context.Background(), 99, "new-pw-123")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestAuthService_StoreUnavailable(t *testing.T) {
	storeFailures := []struct {
		name string
		err  error
	}{
		{"stale pooled connection", driver.ErrBadConn},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}},
		{"query timeout", context.DeadlineExceeded},
	}

	for _, tt := range storeFailures {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("UpdateFields", mock.Anything, uint(1), mock.Anything).Return(int64(0), tt.err)

			svc := NewAuthService(mockRepo, newTestTokens())
			err := svc.ChangePassword(context.Background(), 1, "new-pw-123")
			assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		})
	}
}
