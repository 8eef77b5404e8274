package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/dto"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository/repotest"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

// ── In-memory wiring ──────────────────────────────────────────────────────────

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (r *memRevoker) Revoke(_ context.Context, jti string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = true
	return nil
}

func (r *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[jti], nil
}

type testServer struct {
	engine *gin.Engine
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	creds := repotest.NewCredentials()
	users := repotest.NewUsers()
	tasks := repotest.NewTasks()
	groups := repotest.NewGroups()
	groupTasks := repotest.NewGroupTasks()

	tokens := auth.NewTokenManager(testSecret, 10*time.Minute, &memRevoker{revoked: map[string]bool{}})
	roles := policy.New([]string{"boss@x.com"}, []string{"root@x.com"})
	cfg := &config.Config{
		Env:                "test",
		RateLimitPerMinute: 1000,
		LoginRateLimit:     1000,
		CORSAllowedOrigins: "*",
	}
	engine := Engine(cfg, Services{
		Tokens:     tokens,
		Auth:       service.NewAuthService(creds, users, tokens, roles, nil, bcrypt.MinCost),
		Tasks:      service.NewTaskService(tasks, users),
		Groups:     service.NewGroupService(groups, groupTasks, users),
		GroupTasks: service.NewGroupTaskService(groups, groupTasks, users, nil),
		Users:      service.NewUserService(users, tasks, groups, creds),
	})
	return &testServer{engine: engine, tokens: tokens}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup registers and logs in a user and returns the login response.
func (s *testServer) signup(t *testing.T, email, username string) dto.LoginResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/register", dto.RegisterRequest{Email: email, Username: username, Password: "pw123"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/login", dto.LoginRequest{Username: username, Password: "pw123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.LoginResponse](t, w)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRegisterLoginCreateList(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/register", dto.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "pw123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decode[dto.RegisterResponse](t, w)
	assert.Equal(t, "Usuario registrado correctamente", reg.Message)
	assert.NotEmpty(t, reg.UserID)

	w = s.do(t, http.MethodPost, "/login", dto.LoginRequest{Username: "alice", Password: "pw123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	user := raw["user"].(map[string]any)
	assert.Equal(t, float64(2), user["role"])
	login := decode[dto.LoginResponse](t, w)
	assert.Equal(t, reg.UserID, login.UserID)

	w = s.do(t, http.MethodPost, "/tasks", map[string]any{
		"nameTask": "Comprar", "descripcion": "pan", "categoria": "casa", "estatus": "pendiente",
		"time": 2, "timeUnit": "days",
	}, login.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.CreateTaskResponse](t, w)

	w = s.do(t, http.MethodGet, "/tasks", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]dto.TaskResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, created.TaskID, list[0].ID)
	assert.Equal(t, reg.UserID, list[0].UserID)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), list[0].Deadline, time.Minute)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com", "alice")

	w := s.do(t, http.MethodPost, "/register", dto.RegisterRequest{Email: "b@x.com", Username: "alice", Password: "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode[errorBody](t, w).Error)
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@x.com", "alice")

	w := s.do(t, http.MethodPost, "/login", dto.LoginRequest{Username: "alice", Password: "wrong"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Contraseña incorrecta", decode[errorBody](t, w).Error)

	w = s.do(t, http.MethodPost, "/login", dto.LoginRequest{Username: "ghost", Password: "pw"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationErrorListsFields(t *testing.T) {
	s := newTestServer(t)
	login := s.signup(t, "a@x.com", "alice")

	w := s.do(t, http.MethodPost, "/tasks", map[string]any{"descripcion": "sin nombre", "timeUnit": "years"}, login.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "required", body.Fields["nameTask"])
	assert.Equal(t, "required", body.Fields["estatus"])
	assert.Equal(t, "oneof", body.Fields["timeUnit"])

	w = s.do(t, http.MethodPost, "/register", map[string]any{"email": "not-an-email", "username": "x", "password": "p"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[errorBody](t, w).Fields["email"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	login := s.signup(t, "a@x.com", "alice")

	w := s.do(t, http.MethodGet, "/tasks", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token requerido", decode[errorBody](t, w).Error)

	claims, err := s.tokens.Parse(login.Token)
	require.NoError(t, err)
	expired, _, err := s.tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).Issue(claims.Identity())
	require.NoError(t, err)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodPut, "/tasks/t1"},
		{http.MethodDelete, "/tasks/t1"},
		{http.MethodGet, "/groups"},
		{http.MethodPost, "/groups"},
		{http.MethodGet, "/groups/g1"},
		{http.MethodDelete, "/groups/g1"},
		{http.MethodGet, "/groups/g1/users"},
		{http.MethodPost, "/groups/g1/users"},
		{http.MethodDelete, "/groups/g1/users/u1"},
		{http.MethodGet, "/groups/g1/tasks"},
		{http.MethodPost, "/groups/g1/tasks"},
		{http.MethodGet, "/groups/g1/tasks/stats"},
		{http.MethodPut, "/groups/g1/tasks/t1"},
		{http.MethodPatch, "/groups/g1/tasks/t1"},
		{http.MethodDelete, "/groups/g1/tasks/t1"},
		{http.MethodGet, "/groups/g1/report"},
		{http.MethodGet, "/users"},
		{http.MethodPut, "/users/u1"},
		{http.MethodDelete, "/users/u1"},
	}
	for _, rt := range routes {
		w = s.do(t, rt.method, rt.path, nil, expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	login := s.signup(t, "a@x.com", "alice")

	w := s.do(t, http.MethodPost, "/logout", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/tasks", nil, login.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersRoutes_RoleGate(t *testing.T) {
	s := newTestServer(t)
	member := s.signup(t, "a@x.com", "alice")
	master := s.signup(t, "root@x.com", "root")
	assert.Equal(t, 3, int(master.User.Role))

	w := s.do(t, http.MethodGet, "/users", nil, member.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/users", nil, master.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.UserResponse](t, w), 2)

	w = s.do(t, http.MethodPut, "/users/"+member.UserID, map[string]any{"role": 1}, master.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, int(decode[dto.UserResponse](t, w).Role))

	w = s.do(t, http.MethodDelete, "/users/"+member.UserID, nil, master.Token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/users/"+member.UserID, nil, master.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "a@x.com", "alice")
	bob := s.signup(t, "b@x.com", "bob")

	w := s.do(t, http.MethodPost, "/tasks", map[string]any{"nameTask": "mine", "estatus": "p"}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[dto.CreateTaskResponse](t, w).TaskID

	w = s.do(t, http.MethodPut, "/tasks/"+id, map[string]any{"nameTask": "stolen"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/tasks/"+id, nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/tasks/"+id, map[string]any{"estatus": "hecho"}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[dto.TaskResponse](t, w)
	assert.Equal(t, "mine", updated.Name)
	assert.Equal(t, "hecho", updated.Status)

	w = s.do(t, http.MethodDelete, "/tasks/"+id, nil, alice.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/tasks/"+id, nil, alice.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, "boss@x.com", "boss")
	bob := s.signup(t, "b@x.com", "bob")
	carol := s.signup(t, "c@x.com", "carol")

	w := s.do(t, http.MethodPost, "/groups", dto.CreateGroupRequest{Name: "Equipo"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/groups", dto.CreateGroupRequest{Name: "Equipo", Members: []string{bob.UserID}}, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	groupID := decode[dto.CreateGroupResponse](t, w).GroupID
	base := "/groups/" + groupID

	w = s.do(t, http.MethodPost, base+"/tasks", dto.AssignGroupTaskRequest{
		Title: "Informe", Description: "mensual", DueDate: "2026-05-01", AssignedTo: []string{bob.UserID},
	}, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	taskID := decode[dto.AssignGroupTaskResponse](t, w).TaskID

	w = s.do(t, http.MethodPatch, base+"/tasks/"+taskID, dto.UpdateGroupTaskStatusRequest{Status: "completada", UpdatedBy: "bob"}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, base+"/tasks/stats", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.GroupTaskStats{Total: 1, Completed: 1}, decode[dto.GroupTaskStats](t, w))

	w = s.do(t, http.MethodGet, base+"/tasks", nil, carol.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, base+"/report", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(t, http.MethodPost, base+"/users", dto.AddMemberRequest{UserID: carol.UserID}, admin.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, base+"/users", nil, carol.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.UserResponse](t, w), 2)

	w = s.do(t, http.MethodDelete, base, nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, base+"/tasks", nil, admin.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
