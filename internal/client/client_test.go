package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/dto"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository/repotest"
	"taskmanager/internal/router"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newAPI serves the real router over in-memory repositories.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	creds := repotest.NewCredentials()
	users := repotest.NewUsers()
	tasks := repotest.NewTasks()
	groups := repotest.NewGroups()
	groupTasks := repotest.NewGroupTasks()
	tokens := auth.NewTokenManager("client_test_secret_32_characters!", 10*time.Minute, nil)
	roles := policy.New([]string{"boss@x.com"}, []string{"root@x.com"})

	engine := router.Engine(&config.Config{Env: "test", RateLimitPerMinute: 1000, LoginRateLimit: 1000}, router.Services{
		Tokens:     tokens,
		Auth:       service.NewAuthService(creds, users, tokens, roles, nil, bcrypt.MinCost),
		Tasks:      service.NewTaskService(tasks, users),
		Groups:     service.NewGroupService(groups, groupTasks, users),
		GroupTasks: service.NewGroupTaskService(groups, groupTasks, users, nil),
		Users:      service.NewUserService(users, tasks, groups, creds),
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, c *Client, email, username string) *dto.LoginResponse {
	t.Helper()
	ctx := context.Background()
	_, err := c.Register(ctx, dto.RegisterRequest{Email: email, Username: username, Password: "pw123"})
	require.NoError(t, err)
	resp, err := c.Login(ctx, username, "pw123")
	require.NoError(t, err)
	return resp
}

func TestClient_PersonalTasks(t *testing.T) {
	srv := newAPI(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	login := signup(t, c, "a@x.com", "alice")
	assert.Equal(t, login.Token, c.Token())
	assert.Equal(t, model.RoleMember, login.User.Role)

	two := 2
	created, err := c.CreateTask(ctx, dto.CreateTaskRequest{Name: "Comprar", Status: "pendiente", Time: &two, TimeUnit: "hours"})
	require.NoError(t, err)

	status := "hecho"
	updated, err := c.UpdateTask(ctx, created.TaskID, dto.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Comprar", updated.Name)

	list, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hecho", list[0].Status)

	require.NoError(t, c.DeleteTask(ctx, created.TaskID))
	err = c.DeleteTask(ctx, created.TaskID)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Tarea no encontrada", apiErr.Message)
}

func TestClient_ValidationFields(t *testing.T) {
	srv := newAPI(t)
	c := New(srv.URL)

	_, err := c.Register(context.Background(), dto.RegisterRequest{Email: "bad", Username: "x", Password: "p"})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "email", apiErr.Fields["email"])
}

func TestClient_GroupsAndReport(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()

	member := New(srv.URL)
	bob := signup(t, member, "b@x.com", "bob")
	admin := New(srv.URL)
	signup(t, admin, "boss@x.com", "boss")

	g, err := admin.CreateGroup(ctx, dto.CreateGroupRequest{Name: "Equipo"})
	require.NoError(t, err)
	require.NoError(t, admin.AddMember(ctx, g.GroupID, bob.UserID))

	groups, err := member.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	task, err := admin.AssignGroupTask(ctx, g.GroupID, dto.AssignGroupTaskRequest{
		Title: "Informe", Description: "mensual", DueDate: "2026-05-01", AssignedTo: []string{bob.UserID},
	})
	require.NoError(t, err)

	updated, err := member.UpdateGroupTaskStatus(ctx, g.GroupID, task.TaskID, dto.UpdateGroupTaskStatusRequest{Status: "en progreso", UpdatedBy: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "en progreso", updated.Status)

	stats, err := member.GroupTaskStats(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InProgress)

	pdf, err := member.GroupReport(ctx, g.GroupID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	err = member.DeleteGroup(ctx, g.GroupID)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	require.NoError(t, admin.RemoveMember(ctx, g.GroupID, bob.UserID))
	_, err = member.GetGroup(ctx, g.GroupID)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestClient_LogoutForgetsToken(t *testing.T) {
	srv := newAPI(t)
	c := New(srv.URL)
	signup(t, c, "a@x.com", "alice")

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())

	_, err := c.ListTasks(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_UsersAdministration(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	member := New(srv.URL)
	alice := signup(t, member, "a@x.com", "alice")
	master := New(srv.URL)
	signup(t, master, "root@x.com", "root")

	_, err := member.ListUsers(ctx)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	users, err := master.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	name := "alicia"
	u, err := master.UpdateUser(ctx, alice.UserID, dto.UpdateUserRequest{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)

	require.NoError(t, master.DeleteUser(ctx, alice.UserID))
}
