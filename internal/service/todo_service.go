package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todoapp/internal/cache"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

const todoListCacheTTL = time.Minute

// TodoPatch describes a partial update; nil fields are left untouched.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// TodoService handles todo operations scoped to an authenticated user.
type TodoService interface {
	Create(ctx context.Context, userID uint, text string) (*model.Todo, error)
	List(ctx context.Context, userID uint) ([]model.Todo, error)
	Update(ctx context.Context, userID uint, id uuid.UUID, patch TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, userID uint, id uuid.UUID) error
}

type todoService struct {
	repo  repository.TodoRepository
	cache *cache.Client
}

// NewTodoService creates a new todo service.
func NewTodoService(repo repository.TodoRepository, cache *cache.Client) TodoService {
	return &todoService{repo: repo, cache: cache}
}

func (s *todoService) cacheKey(userID uint) string {
	return fmt.Sprintf("todos:user:%d", userID)
}

// Create stores a new todo owned by userID.
func (s *todoService) Create(ctx context.Context, userID uint, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyText
	}

	todo := &model.Todo{
		UserID: userID,
		Text:   text,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return todo, nil
}

// List returns the user's todos, newest first, with short-lived caching.
func (s *todoService) List(ctx context.Context, userID uint) ([]model.Todo, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(userID)); data != nil {
		var cached []model.Todo
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	todos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	if payload, err := json.Marshal(todos); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, todoListCacheTTL)
	}
	return todos, nil
}

// Update applies a patch to a todo the user owns.
func (s *todoService) Update(ctx context.Context, userID uint, id uuid.UUID, patch TodoPatch) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, apperrors.ErrEmptyText
		}
		todo.Text = text
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return todo, nil
}

// Delete removes a todo the user owns. Deleting a missing or already-deleted
// item reports not-found.
func (s *todoService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	todo, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, todo); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return nil
}

// findOwned loads the todo and enforces ownership. Ownership violations are
// reported as forbidden, not as not-found, per the API contract.
func (s *todoService) findOwned(ctx context.Context, userID uint, id uuid.UUID) (*model.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}
	if todo.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return todo, nil
}
