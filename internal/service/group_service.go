package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskmanager/internal/apierror"
	"taskmanager/internal/auth"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultGroupStatus = "activo"

type GroupService interface {
	List(ctx context.Context, caller auth.Identity) ([]dto.GroupResponse, error)
	Get(ctx context.Context, caller auth.Identity, groupID string) (*dto.GroupResponse, error)
	Create(ctx context.Context, caller auth.Identity, req dto.CreateGroupRequest) (*dto.CreateGroupResponse, error)
	Delete(ctx context.Context, caller auth.Identity, groupID string) error
	Members(ctx context.Context, caller auth.Identity, groupID string) ([]dto.UserResponse, error)
	AddMember(ctx context.Context, caller auth.Identity, groupID, userID string) error
	RemoveMember(ctx context.Context, caller auth.Identity, groupID, userID string) error
}

type groupService struct {
	groups     repository.GroupRepository
	groupTasks repository.GroupTaskRepository
	users      repository.UserRepository
	now        func() time.Time
}

func NewGroupService(
	groups repository.GroupRepository,
	groupTasks repository.GroupTaskRepository,
	users repository.UserRepository,
) GroupService {
	return &groupService{groups: groups, groupTasks: groupTasks, users: users, now: time.Now}
}

// List returns the groups an Admin created, or the groups anyone else belongs to.
func (s *groupService) List(ctx context.Context, caller auth.Identity) ([]dto.GroupResponse, error) {
	var (
		groups []model.Group
		err    error
	)
	if caller.Role == model.RoleAdmin {
		groups, err = s.groups.ListByCreator(ctx, caller.ID)
	} else {
		groups, err = s.groups.ListByMember(ctx, caller.ID)
	}
	if err != nil {
		return nil, upstream(err)
	}
	resp := make([]dto.GroupResponse, len(groups))
	for i := range groups {
		resp[i] = toGroupResponse(&groups[i])
	}
	return resp, nil
}

func (s *groupService) Get(ctx context.Context, caller auth.Identity, groupID string) (*dto.GroupResponse, error) {
	g, err := readableGroup(ctx, s.groups, caller, groupID)
	if err != nil {
		return nil, err
	}
	resp := toGroupResponse(g)
	return &resp, nil
}

func (s *groupService) Create(ctx context.Context, caller auth.Identity, req dto.CreateGroupRequest) (*dto.CreateGroupResponse, error) {
	if caller.Role != model.RoleAdmin {
		return nil, apierror.Forbidden("Solo un administrador puede crear grupos")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("El nombre del grupo es obligatorio")
	}

	if _, err := s.groups.FindByName(ctx, name); err == nil {
		return nil, apierror.Conflict("Ya existe un grupo con ese nombre")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, upstream(err)
	}

	members := dedupe(req.Members)
	if len(members) > 0 {
		found, err := s.users.FindByIDs(ctx, members)
		if err != nil {
			return nil, upstream(err)
		}
		if len(found) != len(members) {
			return nil, apierror.Validation("Uno o mas miembros no existen")
		}
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = defaultGroupStatus
	}
	now := s.now().UTC()
	g := &model.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: caller.ID,
		Members:   members,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("Ya existe un grupo con ese nombre")
		}
		return nil, upstream(err)
	}
	return &dto.CreateGroupResponse{Message: "Grupo creado correctamente", GroupID: g.ID}, nil
}

// Delete removes the group and every task nested under it.
func (s *groupService) Delete(ctx context.Context, caller auth.Identity, groupID string) error {
	if caller.Role != model.RoleAdmin {
		return apierror.Forbidden("Solo un administrador puede eliminar grupos")
	}
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	// Tasks first: the group must outlive a failed cascade.
	n, err := s.groupTasks.DeleteByGroup(ctx, groupID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("group delete: tasks not removed")
		return upstream(err)
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	log.Info().Str("group_id", groupID).Int64("tasks", n).Msg("group deleted")
	return nil
}

func (s *groupService) Members(ctx context.Context, caller auth.Identity, groupID string) ([]dto.UserResponse, error) {
	g, err := readableGroup(ctx, s.groups, caller, groupID)
	if err != nil {
		return nil, err
	}
	if len(g.Members) == 0 {
		return []dto.UserResponse{}, nil
	}
	users, err := s.users.FindByIDs(ctx, g.Members)
	if err != nil {
		return nil, upstream(err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	return resp, nil
}

// AddMember is idempotent: adding an existing member leaves one entry.
func (s *groupService) AddMember(ctx context.Context, caller auth.Identity, groupID, userID string) error {
	if caller.Role != model.RoleAdmin {
		return apierror.Forbidden("Solo un administrador puede gestionar miembros")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apierror.Validation("userId es obligatorio")
	}
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "Usuario no encontrado")
	}
	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	return nil
}

// RemoveMember is idempotent: removing a non-member is a no-op.
func (s *groupService) RemoveMember(ctx context.Context, caller auth.Identity, groupID, userID string) error {
	if caller.Role != model.RoleAdmin {
		return apierror.Forbidden("Solo un administrador puede gestionar miembros")
	}
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return notFoundOr(err, "Grupo no encontrado")
	}
	return nil
}

// readableGroup loads a group the caller created or belongs to.
func readableGroup(ctx context.Context, groups repository.GroupRepository, caller auth.Identity, groupID string) (*model.Group, error) {
	g, err := groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, notFoundOr(err, "Grupo no encontrado")
	}
	if !g.HasAccess(caller.ID) {
		return nil, apierror.Forbidden("No perteneces a este grupo")
	}
	return g, nil
}
