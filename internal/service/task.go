package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/store"
)

type TaskService struct {
	store store.Store
}

func NewTaskService(st store.Store) *TaskService {
	return &TaskService{store: st}
}

type TaskInput struct {
	Title        string
	Description  string
	Type         domain.TaskType
	Reward       decimal.Decimal
	Status       domain.TaskStatus
	URL          string
	ExpiresAt    *time.Time
	Requirements *domain.TaskRequirements
}

func (in *TaskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown task type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Reward.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: reward must be positive", domain.ErrInvalidAmount)
	}
	if in.Status == "" {
		in.Status = domain.TaskStatusActive
	}
	if in.Status != domain.TaskStatusActive && in.Status != domain.TaskStatusInactive {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, actor domain.Actor, in TaskInput) (*domain.Task, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Type:         in.Type,
		Reward:       in.Reward,
		Status:       in.Status,
		URL:          in.URL,
		ExpiresAt:    in.ExpiresAt,
		Requirements: in.Requirements,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, actor domain.Actor, id string, in TaskInput) (*domain.Task, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:           id,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Type:         in.Type,
		Reward:       in.Reward,
		Status:       in.Status,
		URL:          in.URL,
		ExpiresAt:    in.ExpiresAt,
		Requirements: in.Requirements,
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrNotAdmin
	}
	return s.store.DeleteTask(ctx, id)
}

func (s *TaskService) List(ctx context.Context, actor domain.Actor) ([]domain.Task, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAdmin
	}
	return s.store.ListTasks(ctx)
}

// Available lists tasks the account can still start.
func (s *TaskService) Available(ctx context.Context, accountID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := retryRepo(ctx, func() error {
		var err error
		tasks, err = s.store.ListAvailableTasks(ctx, accountID, time.Now())
		return err
	})
	return tasks, err
}
