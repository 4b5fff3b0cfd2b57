package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
)

// MockBookRepository is a mock implementation of BookRepository.
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *model.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookRepository) List(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockBookRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestBookService_GetBook_NotFound(t *testing.T) {
	mockRepo := new(MockBookRepository)
	id := uuid.New()
	mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewBookService(mockRepo, nil)
	_, err := svc.GetBook(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestBookService_UpdateBook(t *testing.T) {
	mockRepo := new(MockBookRepository)
	id := uuid.New()
	title := "Updated Title"

	mockRepo.On("UpdateFields", mock.Anything, id, map[string]interface{}{"title": title}).Return(int64(1), nil)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.Book{ID: id, Title: title, Author: "A"}, nil)

	svc := NewBookService(mockRepo, nil)
	book, err := svc.UpdateBook(context.Background(), id, BookUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, book.Title)
	mockRepo.AssertExpectations(t)
}

func TestBookService_UpdateBook_NotFound(t *testing.T) {
	mockRepo := new(MockBookRepository)
	id := uuid.New()
	title := "x"
	mockRepo.On("UpdateFields", mock.Anything, id, mock.Anything).Return(int64(0), nil)

	svc := NewBookService(mockRepo, nil)
	_, err := svc.UpdateBook(context.Background(), id, BookUpdate{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestBookService_DeleteBook_NotFound(t *testing.T) {
	mockRepo := new(MockBookRepository)
	id := uuid.New()
	mockRepo.On("Delete", mock.Anything, id).Return(int64(0), nil)

	svc := NewBookService(mockRepo, nil)
	err := svc.DeleteBook(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}
