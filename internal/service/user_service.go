package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskmanager/internal/apierror"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	groups repository.GroupRepository
	creds  repository.CredentialRepository
	now    func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	groups repository.GroupRepository,
	creds repository.CredentialRepository,
) UserService {
	return &userService{users: users, tasks: tasks, groups: groups, creds: creds, now: time.Now}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	return resp, nil
}

// Update merges only the supplied fields. The profile is written first; if
// the credential then refuses the new e-mail, the profile e-mail is restored.
func (s *userService) Update(ctx context.Context, userID string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado")
	}

	patch := model.UserPatch{UpdatedAt: s.now().UTC()}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apierror.Validation("username no puede estar vacio")
		}
		if username != user.Username {
			if other, err := s.users.FindByUsername(ctx, username); err == nil && other.ID != user.ID {
				return nil, apierror.Conflict("El nombre de usuario ya esta en uso")
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, upstream(err)
			}
			patch.Username = &username
		}
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, apierror.Validation("email no puede estar vacio")
		}
		if email != user.Email {
			if other, err := s.users.FindByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, apierror.Conflict("El email ya esta registrado")
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, upstream(err)
			}
			patch.Email = &email
		}
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apierror.Validation("role debe ser 1, 2 o 3")
		}
		patch.Role = req.Role
	}

	updated, err := s.users.Update(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("El usuario o email ya existe")
		}
		return nil, notFoundOr(err, "Usuario no encontrado")
	}

	if patch.Email != nil {
		if err := s.updateCredentialEmail(ctx, user.ID, *patch.Email); err != nil {
			s.restoreEmail(ctx, user)
			return nil, err
		}
	}
	resp := toUserResponse(updated)
	return &resp, nil
}

// restoreEmail puts the previous e-mail back on a profile whose credential
// could not follow. It runs detached from ctx like the register rollback.
func (s *userService) restoreEmail(ctx context.Context, prev *model.User) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, err := s.users.Update(cctx, prev.ID, model.UserPatch{Email: &prev.Email, UpdatedAt: prev.UpdatedAt})
	if err != nil {
		log.Error().Err(err).Str("user_id", prev.ID).Msg("user update: profile e-mail not restored")
		return
	}
	log.Warn().Str("user_id", prev.ID).Msg("user update: profile e-mail rolled back")
}

// updateCredentialEmail keeps the credential store in step with the profile.
// Users without a credential (seeded directly) are skipped.
func (s *userService) updateCredentialEmail(ctx context.Context, userID, email string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	err = s.creds.UpdateEmail(ctx, id, email)
	switch {
	case err == nil, errors.Is(err, repository.ErrNotFound):
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.Conflict("El email ya esta registrado")
	default:
		return apierror.Upstream("error al actualizar la credencial", err)
	}
}

// Delete removes the user document, the user's personal tasks and group
// memberships, then the credential. A credential failure is only logged.
func (s *userService) Delete(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "Usuario no encontrado")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return notFoundOr(err, "Usuario no encontrado")
	}
	if err := s.tasks.DeleteByOwner(ctx, userID); err != nil {
		return upstream(err)
	}
	if err := s.groups.RemoveMemberEverywhere(ctx, userID); err != nil {
		return upstream(err)
	}

	if id, err := uuid.Parse(userID); err == nil {
		if err := s.creds.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("user_id", userID).Msg("user delete: credential not removed")
		}
	}
	log.Info().Str("user_id", userID).Msg("user deleted")
	return nil
}
