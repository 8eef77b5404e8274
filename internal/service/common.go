package service

import (
	"context"
	"errors"
	"strings"

	"taskmanager/internal/apierror"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/worker"

	"github.com/rs/zerolog/log"
)

// Notifier queues outgoing e-mail. *worker.Dispatcher satisfies it; a nil
// Notifier disables notifications.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

// notify is best effort: a queue failure never fails the request.
func notify(ctx context.Context, n Notifier, payload worker.EmailJobPayload) {
	if n == nil || payload.ToEmail == "" {
		return
	}
	if err := n.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("to", payload.ToEmail).Msg("notify: enqueue failed")
	}
}

// notFoundOr maps repository.ErrNotFound to a NotFound error with msg and any
// other failure to an upstream error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound(msg)
	}
	return apierror.Upstream("error de base de datos", err)
}

func upstream(err error) error {
	return apierror.Upstream("error de base de datos", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dedupe drops blanks and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		LastLogin: u.LastLogin,
	}
}

func toTaskResponse(t *model.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toGroupResponse(g *model.Group) dto.GroupResponse {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return dto.GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		Members:   members,
		Status:    g.Status,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toGroupTaskResponse(t *model.GroupTask) dto.GroupTaskResponse {
	return dto.GroupTaskResponse{
		ID:          t.ID,
		GroupID:     t.GroupID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
		UpdatedBy:   t.UpdatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
