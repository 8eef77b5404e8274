package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/apierror"
	"taskmanager/internal/auth"
	"taskmanager/internal/dto"
	"taskmanager/internal/infra"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/worker"

	"github.com/google/uuid"
)

type GroupTaskService interface {
	Assign(ctx context.Context, caller auth.Identity, groupID string, req dto.AssignGroupTaskRequest) (*dto.AssignGroupTaskResponse, error)
	List(ctx context.Context, caller auth.Identity, groupID string) ([]dto.GroupTaskResponse, error)
	UpdateStatus(ctx context.Context, caller auth.Identity, groupID, taskID string, req dto.UpdateGroupTaskStatusRequest) (*dto.GroupTaskResponse, error)
	Delete(ctx context.Context, caller auth.Identity, groupID, taskID string) error
	Stats(ctx context.Context, caller auth.Identity, groupID string) (*dto.GroupTaskStats, error)
	Report(ctx context.Context, caller auth.Identity, groupID string) ([]byte, error)
}

type groupTaskService struct {
	groups     repository.GroupRepository
	groupTasks repository.GroupTaskRepository
	users      repository.UserRepository
	notifier   Notifier
	now        func() time.Time
}

func NewGroupTaskService(
	groups repository.GroupRepository,
	groupTasks repository.GroupTaskRepository,
	users repository.UserRepository,
	notifier Notifier,
) GroupTaskService {
	return &groupTaskService{
		groups:     groups,
		groupTasks: groupTasks,
		users:      users,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (s *groupTaskService) Assign(ctx context.Context, caller auth.Identity, groupID string, req dto.AssignGroupTaskRequest) (*dto.AssignGroupTaskResponse, error) {
	if caller.Role != model.RoleAdmin {
		return nil, apierror.Forbidden("Solo un administrador puede asignar tareas")
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, apierror.Validation("title y description son obligatorios")
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	assignees := dedupe(req.AssignedTo)
	if len(assignees) == 0 {
		return nil, apierror.Validation("assignedTo debe tener al menos un usuario")
	}

	g, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, notFoundOr(err, "Grupo no encontrado")
	}
	for _, id := range assignees {
		if !g.IsMember(id) {
			return nil, apierror.Validation(fmt.Sprintf("El usuario %s no es miembro del grupo", id))
		}
	}

	now := s.now().UTC()
	task := &model.GroupTask{
		ID:          uuid.NewString(),
		GroupID:     g.ID,
		Title:       title,
		Description: description,
		DueDate:     due,
		AssignedTo:  assignees,
		Status:      model.GroupTaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.groupTasks.Create(ctx, task); err != nil {
		return nil, upstream(err)
	}

	s.notifyAssignees(ctx, g, task)
	return &dto.AssignGroupTaskResponse{Message: "Tarea asignada correctamente", TaskID: task.ID}, nil
}

func (s *groupTaskService) notifyAssignees(ctx context.Context, g *model.Group, t *model.GroupTask) {
	if s.notifier == nil {
		return
	}
	users, err := s.users.FindByIDs(ctx, t.AssignedTo)
	if err != nil {
		return
	}
	for _, u := range users {
		notify(ctx, s.notifier, worker.EmailJobPayload{
			ToEmail: u.Email,
			Subject: "Nueva tarea en " + g.Name,
			Body: fmt.Sprintf("Hola %s, se te asigno la tarea %q con vencimiento %s.",
				u.Username, t.Title, t.DueDate.Format("02/01/2006")),
		})
	}
}

func (s *groupTaskService) List(ctx context.Context, caller auth.Identity, groupID string) ([]dto.GroupTaskResponse, error) {
	tasks, _, err := s.readTasks(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.GroupTaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = toGroupTaskResponse(&tasks[i])
	}
	return resp, nil
}

// UpdateStatus allows any transition between known statuses.
func (s *groupTaskService) UpdateStatus(ctx context.Context, caller auth.Identity, groupID, taskID string, req dto.UpdateGroupTaskStatusRequest) (*dto.GroupTaskResponse, error) {
	status := strings.TrimSpace(req.Status)
	updatedBy := strings.TrimSpace(req.UpdatedBy)
	if status == "" || updatedBy == "" {
		return nil, apierror.Validation("status y updatedBy son obligatorios")
	}
	if !model.ValidGroupTaskStatus(status) {
		return nil, apierror.Validation("status invalido")
	}
	if _, err := readableGroup(ctx, s.groups, caller, groupID); err != nil {
		return nil, err
	}

	updated, err := s.groupTasks.UpdateStatus(ctx, groupID, taskID, status, updatedBy, s.now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "Tarea no encontrada")
	}
	resp := toGroupTaskResponse(updated)
	return &resp, nil
}

func (s *groupTaskService) Delete(ctx context.Context, caller auth.Identity, groupID, taskID string) error {
	if caller.Role != model.RoleAdmin {
		return apierror.Forbidden("Solo un administrador puede eliminar tareas de grupo")
	}
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	if err := s.groupTasks.Delete(ctx, groupID, taskID); err != nil {
		return notFoundOr(err, "Tarea no encontrada")
	}
	return nil
}

func (s *groupTaskService) Stats(ctx context.Context, caller auth.Identity, groupID string) (*dto.GroupTaskStats, error) {
	tasks, _, err := s.readTasks(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	stats := countByStatus(tasks)
	return &stats, nil
}

// Report renders the group's tasks as a PDF.
func (s *groupTaskService) Report(ctx context.Context, caller auth.Identity, groupID string) ([]byte, error) {
	tasks, g, err := s.readTasks(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	stats := countByStatus(tasks)
	pdf, err := infra.GenerateGroupReportPDF(infra.GroupReport{
		Group:       g,
		Tasks:       tasks,
		Pending:     stats.Pending,
		InProgress:  stats.InProgress,
		Completed:   stats.Completed,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, apierror.Upstream("error al generar el reporte", err)
	}
	return pdf, nil
}

func (s *groupTaskService) readTasks(ctx context.Context, caller auth.Identity, groupID string) ([]model.GroupTask, *model.Group, error) {
	g, err := readableGroup(ctx, s.groups, caller, groupID)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.groupTasks.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, upstream(err)
	}
	return tasks, g, nil
}

// countByStatus buckets tasks by canonical status. Unknown labels only count
// towards the total.
func countByStatus(tasks []model.GroupTask) dto.GroupTaskStats {
	stats := dto.GroupTaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch model.CanonicalGroupTaskStatus(t.Status) {
		case model.GroupTaskPending:
			stats.Pending++
		case model.GroupTaskInProgress:
			stats.InProgress++
		case model.GroupTaskCompleted:
			stats.Completed++
		}
	}
	return stats
}

// parseDueDate accepts a calendar date (YYYY-MM-DD) or a full RFC 3339 timestamp.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apierror.Validation("dueDate es obligatorio")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apierror.Validation("dueDate debe tener formato YYYY-MM-DD o RFC 3339")
}
