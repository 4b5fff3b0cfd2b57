package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
	"altiushub/internal/repository"
)

// UserUpdate carries the mutable fields of a user record. Nil means
// "leave unchanged".
type UserUpdate struct {
	Name *string
	Role *model.Role
}

// UserService exposes user record operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, update UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", storeErr(err))
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", storeErr(err))
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, update UserUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, apperrors.ErrInvalidRole
		}
		// Already-issued tokens keep the old role until they expire; the
		// short access-token TTL bounds the staleness window.
		fields["role"] = *update.Role
	}

	if len(fields) > 0 {
		matched, err := s.repo.UpdateFields(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", storeErr(err))
		}
		if matched == 0 {
			return nil, apperrors.ErrUserNotFound
		}
	}

	return s.GetUser(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", storeErr(err))
	}
	if deleted == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
