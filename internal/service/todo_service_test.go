package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"todoapp/internal/cache"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/model"
)

// MockTodoRepository is a mock implementation of TodoRepository.
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) Delete(ctx context.Context, todo *model.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoRepository) ListByUser(ctx context.Context, userID uint) ([]model.Todo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Todo), args.Error(1)
}

// noCache is an always-empty cache; the nil Client behaves as a no-op.
var noCache *cache.Client

func TestTodoService_Create(t *testing.T) {
	t.Run("empty text rejected", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		svc := NewTodoService(mockRepo, noCache)

		todo, err := svc.Create(context.Background(), 1, "   ")
		assert.ErrorIs(t, err, apperrors.ErrEmptyText)
		assert.Nil(t, todo)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("create then list round-trips", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		svc := NewTodoService(mockRepo, noCache)

		var stored *model.Todo
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Todo")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*model.Todo)
			}).Return(nil)

		created, err := svc.Create(context.Background(), 1, "buy milk")
		assert.NoError(t, err)
		assert.Equal(t, "buy milk", created.Text)
		assert.False(t, created.Completed)
		assert.Equal(t, uint(1), created.UserID)

		mockRepo.On("ListByUser", mock.Anything, uint(1)).Return([]model.Todo{*stored}, nil)

		todos, err := svc.List(context.Background(), 1)
		assert.NoError(t, err)
		assert.Len(t, todos, 1)
		assert.Equal(t, "buy milk", todos[0].Text)
		assert.False(t, todos[0].Completed)

		mockRepo.AssertExpectations(t)
	})
}

func TestTodoService_Update(t *testing.T) {
	ownedID := uuid.New()
	foreignID := uuid.New()
	missingID := uuid.New()
	completed := true

	tests := []struct {
		name          string
		userID        uint
		todoID        uuid.UUID
		patch         TodoPatch
		setupMock     func(*MockTodoRepository)
		expectedError error
	}{
		{
			name:   "toggle completed",
			userID: 1,
			todoID: ownedID,
			patch:  TodoPatch{Completed: &completed},
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, ownedID).Return(&model.Todo{ID: ownedID, UserID: 1, Text: "buy milk"}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.Todo")).Return(nil)
			},
		},
		{
			name:   "foreign todo is forbidden",
			userID: 1,
			todoID: foreignID,
			patch:  TodoPatch{Completed: &completed},
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, foreignID).Return(&model.Todo{ID: foreignID, UserID: 2, Text: "not yours"}, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:   "missing todo is not found",
			userID: 1,
			todoID: missingID,
			patch:  TodoPatch{Completed: &completed},
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, missingID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrTodoNotFound,
		},
		{
			name:   "patch to empty text rejected",
			userID: 1,
			todoID: ownedID,
			patch:  TodoPatch{Text: strPtr("  ")},
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, ownedID).Return(&model.Todo{ID: ownedID, UserID: 1, Text: "buy milk"}, nil)
			},
			expectedError: apperrors.ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)
			svc := NewTodoService(mockRepo, noCache)

			todo, err := svc.Update(context.Background(), tt.userID, tt.todoID, tt.patch)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, todo)
				mockRepo.AssertNotCalled(t, "Update")
			} else {
				assert.NoError(t, err)
				assert.True(t, todo.Completed)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTodoService_Delete(t *testing.T) {
	ownedID := uuid.New()
	foreignID := uuid.New()
	missingID := uuid.New()

	tests := []struct {
		name          string
		todoID        uuid.UUID
		setupMock     func(*MockTodoRepository)
		expectedError error
	}{
		{
			name:   "delete own todo",
			todoID: ownedID,
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, ownedID).Return(&model.Todo{ID: ownedID, UserID: 1}, nil)
				m.On("Delete", mock.Anything, mock.AnythingOfType("*model.Todo")).Return(nil)
			},
		},
		{
			name:   "already deleted reports not found",
			todoID: missingID,
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, missingID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrTodoNotFound,
		},
		{
			name:   "foreign todo is forbidden",
			todoID: foreignID,
			setupMock: func(m *MockTodoRepository) {
				m.On("FindByID", mock.Anything, foreignID).Return(&model.Todo{ID: foreignID, UserID: 2}, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)
			svc := NewTodoService(mockRepo, noCache)

			err := svc.Delete(context.Background(), 1, tt.todoID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockRepo.AssertNotCalled(t, "Delete")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
