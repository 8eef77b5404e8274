package service

import (
	"context"
	"errors"
	"testing"

	"taskmanager/internal/apierror"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, dto.RegisterRequest{Email: "A@X.com", Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.UserID)

	u, err := f.users.FindByID(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, model.RoleMember, u.Role)
	assert.NotEqual(t, "pw123", u.PasswordHash)

	cred, err := f.creds.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, cred.ID.String())

	jobs := f.notifier.sent()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a@x.com", jobs[0].ToEmail)
}

func TestRegister_RoleFromPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.auth.Register(ctx, dto.RegisterRequest{Email: "boss@x.com", Username: "boss", Password: "pw"})
	require.NoError(t, err)
	master, err := f.auth.Register(ctx, dto.RegisterRequest{Email: "root@x.com", Username: "root", Password: "pw"})
	require.NoError(t, err)

	u, _ := f.users.FindByID(ctx, admin.UserID)
	assert.Equal(t, model.RoleAdmin, u.Role)
	u, _ = f.users.FindByID(ctx, master.UserID)
	assert.Equal(t, model.RoleMaster, u.Role)
}

func TestRegister_DuplicateCreatesNoDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, dto.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	cases := []dto.RegisterRequest{
		{Email: "other@x.com", Username: "alice", Password: "pw"},
		{Email: "a@x.com", Username: "someone", Password: "pw"},
	}
	for _, req := range cases {
		_, err := f.auth.Register(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
		assert.Equal(t, 400, apierror.KindOf(err).Status())
	}
	assert.Equal(t, 1, f.users.Len())
	assert.Equal(t, 1, f.creds.Len())
}

type countingCreds struct {
	*repotest.Credentials
	creates int
}

func (c *countingCreds) Create(ctx context.Context, cred *model.Credential) error {
	c.creates++
	return c.Credentials.Create(ctx, cred)
}

func TestRegister_OrphanCredentialRejectedUpFront(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.creds.Create(ctx, &model.Credential{Email: "a@x.com", DisplayName: "ghost"}))

	creds := &countingCreds{Credentials: f.creds}
	svc := NewAuthService(creds, f.users, f.tokens, policy.New(nil, nil), f.notifier, bcrypt.MinCost)

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "A@x.com", Username: "alice", Password: "pw"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.Zero(t, creds.creates)
	assert.Equal(t, 0, f.users.Len())
	assert.Equal(t, 1, f.creds.Len())
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{Email: "a@x.com", Username: "  ", Password: "pw"})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Equal(t, 0, f.creds.Len())
}

func TestRegister_DocumentFailureRollsBackCredential(t *testing.T) {
	f := newFixture(t)
	f.users.CreateErr = errors.New("mongo down")

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindUpstream, apierror.KindOf(err))
	assert.Equal(t, 0, f.creds.Len(), "credential must be compensated")
	assert.Empty(t, f.notifier.sent())
}

func TestRegister_CompensationFailureStillReportsError(t *testing.T) {
	f := newFixture(t)
	f.users.CreateErr = errors.New("mongo down")
	f.creds.DeleteErr = errors.New("postgres down")

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "pw"})
	assert.Equal(t, apierror.KindUpstream, apierror.KindOf(err))
	assert.Equal(t, 1, f.creds.Len())
}

func TestLogin_TokenCarriesStoredRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.auth.Register(ctx, dto.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, resp.UserID)
	assert.Equal(t, model.RoleMember, resp.User.Role)
	assert.Equal(t, 600, resp.ExpiresIn)
	require.NotNil(t, resp.User.LastLogin)

	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, claims.Role)
	assert.Equal(t, reg.UserID, claims.ID)
	assert.Equal(t, "alice", claims.Username)

	u, _ := f.users.FindByID(ctx, reg.UserID)
	assert.NotNil(t, u.LastLogin)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", model.RoleMember)

	resp, err := f.auth.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "nope"})
	assert.Nil(t, resp)
	assert.Equal(t, apierror.KindAuthentication, apierror.KindOf(err))
	assert.Equal(t, 400, apierror.KindOf(err).Status())
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "pw"})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestLogout_NilClaims(t *testing.T) {
	f := newFixture(t)
	err := f.auth.Logout(context.Background(), nil)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}
