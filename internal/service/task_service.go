package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/apierror"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, ownerID string, req dto.CreateTaskRequest) (*dto.CreateTaskResponse, error)
	List(ctx context.Context, ownerID string) ([]dto.TaskResponse, error)
	Update(ctx context.Context, callerID, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, callerID, taskID string) error
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) TaskService {
	return &taskService{tasks: tasks, users: users, now: time.Now}
}

func (s *taskService) Create(ctx context.Context, ownerID string, req dto.CreateTaskRequest) (*dto.CreateTaskResponse, error) {
	name := strings.TrimSpace(req.Name)
	status := strings.TrimSpace(req.Status)
	if name == "" || status == "" {
		return nil, apierror.Validation("nameTask y estatus son obligatorios")
	}

	now := s.now().UTC()
	offset, err := deadlineOffset(req.Time, optional(req.TimeUnit))
	if err != nil {
		return nil, err
	}

	// A token may outlive its user; tasks must always point at an existing one.
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.Unauthorized("El usuario del token ya no existe")
		}
		return nil, upstream(err)
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: req.Description,
		Category:    req.Category,
		Status:      status,
		Deadline:    now.Add(offset),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, upstream(err)
	}
	return &dto.CreateTaskResponse{Message: "Tarea creada correctamente", TaskID: task.ID}, nil
}

func (s *taskService) List(ctx context.Context, ownerID string) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, upstream(err)
	}
	resp := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = toTaskResponse(&tasks[i])
	}
	return resp, nil
}

// Update merges only the supplied fields, so concurrent patches on different
// fields do not overwrite each other.
func (s *taskService) Update(ctx context.Context, callerID, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if _, err := s.owned(ctx, callerID, taskID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	patch := model.TaskPatch{
		Description: req.Description,
		Category:    req.Category,
		UpdatedAt:   now,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierror.Validation("nameTask no puede estar vacio")
		}
		patch.Name = &name
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status == "" {
			return nil, apierror.Validation("estatus no puede estar vacio")
		}
		patch.Status = &status
	}
	if req.Time != nil || req.TimeUnit != nil {
		offset, err := deadlineOffset(req.Time, req.TimeUnit)
		if err != nil {
			return nil, err
		}
		deadline := now.Add(offset)
		patch.Deadline = &deadline
	}

	updated, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		return nil, notFoundOr(err, "Tarea no encontrada")
	}
	resp := toTaskResponse(updated)
	return &resp, nil
}

func (s *taskService) Delete(ctx context.Context, callerID, taskID string) error {
	if _, err := s.owned(ctx, callerID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return notFoundOr(err, "Tarea no encontrada")
	}
	return nil
}

// owned loads a task and checks the caller owns it.
func (s *taskService) owned(ctx context.Context, callerID, taskID string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "Tarea no encontrada")
	}
	if task.OwnerID != callerID {
		return nil, apierror.Forbidden("No tienes permiso para modificar esta tarea")
	}
	return task, nil
}

// deadlineOffset validates a relative deadline. Both parts absent means no
// offset; supplying only one of them is an error.
func deadlineOffset(amount *int, unit *string) (time.Duration, error) {
	if amount == nil && unit == nil {
		return 0, nil
	}
	if amount == nil || unit == nil {
		return 0, apierror.Validation("time y timeUnit deben enviarse juntos")
	}
	if *amount <= 0 {
		return 0, apierror.Validation("time debe ser mayor a cero")
	}
	u := model.TimeUnit(*unit)
	if _, ok := u.Unit(); !ok {
		return 0, apierror.Validation("timeUnit debe ser minutes, hours, days o weeks")
	}
	d, ok := u.Duration(*amount)
	if !ok {
		return 0, apierror.Validation(fmt.Sprintf("time no puede superar %d %s", u.MaxAmount(), u))
	}
	return d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
