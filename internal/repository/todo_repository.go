package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todoapp/internal/model"
)

// TodoRepository defines todo persistence operations.
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, todo *model.Todo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Todo, error)
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

// Delete soft-deletes the todo; a deleted item is indistinguishable from a
// missing one on subsequent lookups.
func (r *todoRepository) Delete(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Delete(todo).Error
}

func (r *todoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListByUser returns the user's todos ordered by creation time, newest first.
func (r *todoRepository) ListByUser(ctx context.Context, userID uint) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}
