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
	"taskmanager/internal/policy"
	"taskmanager/internal/repository"
	"taskmanager/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	creds      repository.CredentialRepository
	users      repository.UserRepository
	tokens     *auth.TokenManager
	roles      *policy.RolePolicy
	notifier   Notifier
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(
	creds repository.CredentialRepository,
	users repository.UserRepository,
	tokens *auth.TokenManager,
	roles *policy.RolePolicy,
	notifier Notifier,
	bcryptCost int,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		creds:      creds,
		users:      users,
		tokens:     tokens,
		roles:      roles,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// ── Register ─────────────────────────────────────────────────────────────────
// The user lives in two stores, so registration runs as a small saga:
//   1. reject duplicates up front
//   2. create the credential (source of the user id)
//   3. hash the password and resolve the role
//   4. insert the user document
// A failure after step 2 deletes the credential again.

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return nil, apierror.Validation("Todos los campos son obligatorios")
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	cred := &model.Credential{Email: email, DisplayName: username}
	if err := s.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("El email ya esta registrado")
		}
		return nil, apierror.Upstream("error al crear la credencial", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.compensate(ctx, cred)
		return nil, apierror.Upstream("error al procesar la contraseña", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           cred.ID.String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         s.roles.RoleFor(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.compensate(ctx, cred)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.Conflict("El usuario o email ya existe")
		}
		return nil, upstream(err)
	}

	log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	notify(ctx, s.notifier, worker.EmailJobPayload{
		ToEmail: user.Email,
		Subject: "Bienvenido a Task Manager",
		Body:    "Hola " + user.Username + ", tu cuenta fue creada correctamente.",
	})

	return &dto.RegisterResponse{Message: "Usuario registrado correctamente", UserID: user.ID}, nil
}

func (s *authService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return apierror.Conflict("El nombre de usuario ya esta en uso")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return upstream(err)
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return apierror.Conflict("El email ya esta registrado")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return upstream(err)
	}
	// A credential can exist without a profile (seeded or half-deleted users).
	if _, err := s.creds.FindByEmail(ctx, email); err == nil {
		return apierror.Conflict("El email ya esta registrado")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apierror.Upstream("error al consultar la credencial", err)
	}
	return nil
}

// compensate removes a credential whose user document could not be written.
// It runs detached from ctx so a cancelled request still cleans up.
func (s *authService) compensate(ctx context.Context, cred *model.Credential) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.creds.Delete(cctx, cred.ID); err != nil {
		log.Error().Err(err).Str("credential_id", cred.ID.String()).Msg("register: compensation failed, orphaned credential")
		return
	}
	log.Warn().Str("credential_id", cred.ID.String()).Msg("register: credential rolled back")
}

// ── Login ────────────────────────────────────────────────────────────────────

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apierror.Validation("Usuario y contraseña son obligatorios")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Authentication("Contraseña incorrecta")
	}

	token, _, err := s.tokens.Issue(auth.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
	if err != nil {
		return nil, apierror.Upstream("error al generar el token", err)
	}

	now := s.now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("login: last_login not updated")
	} else {
		user.LastLogin = &now
	}

	return &dto.LoginResponse{
		Message:   "Inicio de sesion exitoso",
		Token:     token,
		UserID:    user.ID,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

// ── Logout ───────────────────────────────────────────────────────────────────

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apierror.Unauthorized("Token requerido")
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return apierror.Upstream("error al revocar el token", err)
	}
	return nil
}
