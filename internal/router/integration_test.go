//go:build integration

package router_test

// End-to-end tests against real Postgres, MongoDB and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskmanager/internal/config"
	"taskmanager/internal/dto"
	"taskmanager/internal/infra"
	"taskmanager/internal/router"
	"taskmanager/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	rdb    *redis.Client
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	gin.SetMode(gin.TestMode)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tasks_test"),
		tcPostgres.WithUsername("tasks"),
		tcPostgres.WithPassword("tasks"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mgC, err := tcMongo.RunContainer(ctx, testcontainers.WithImage("mongo:7"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgC.Terminate(ctx) })
	mgURI, err := mgC.ConnectionString(ctx)
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                  "test",
		RateLimitPerMinute:   1000,
		LoginRateLimit:       1000,
		CORSAllowedOrigins:   "*",
		DatabaseURL:          pgURL,
		MongoURI:             mgURI,
		MongoDatabase:        "tasks_test",
		RedisURL:             rdURL,
		JWTSecret:            "integration_secret_32_characters!",
		JWTExpirationMinutes: 10,
		BcryptCost:           4,
		AdminEmails:          "boss@e2e.test",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	mongoClient, mdb, err := infra.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mongoClient.Disconnect(context.Background()) })
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	engine, err := router.New(cfg, db, mdb, rdb)
	require.NoError(t, err)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, rdb: rdb}
}

func (e *testEnv) signup(t *testing.T, email, username string) dto.LoginResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/register", dto.RegisterRequest{Email: email, Username: username, Password: "pw123"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var login dto.LoginResponse
	resp = e.do(t, http.MethodPost, "/login", dto.LoginRequest{Username: username, Password: "pw123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &login)
	return login
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullCycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	alice := env.signup(t, "a@e2e.test", "alice")
	admin := env.signup(t, "boss@e2e.test", "boss")
	assert.EqualValues(t, 2, alice.User.Role)
	assert.EqualValues(t, 1, admin.User.Role)

	// welcome e-mails wait in the queue for the notifier
	queued, err := env.rdb.LLen(ctx, worker.QueueEmail).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, queued)

	// duplicate registration hits the unique indexes
	resp = env.do(t, http.MethodPost, "/register", dto.RegisterRequest{Email: "a@e2e.test", Username: "other", Password: "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/tasks", map[string]any{"nameTask": "Comprar", "estatus": "pendiente", "time": 1, "timeUnit": "days"}, alice.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var tasks []dto.TaskResponse
	resp = env.do(t, http.MethodGet, "/tasks", nil, alice.Token)
	decodeJSON(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, alice.UserID, tasks[0].UserID)

	var group dto.CreateGroupResponse
	resp = env.do(t, http.MethodPost, "/groups", dto.CreateGroupRequest{Name: "Equipo", Members: []string{alice.UserID}}, admin.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &group)

	resp = env.do(t, http.MethodPost, "/groups/"+group.GroupID+"/tasks", dto.AssignGroupTaskRequest{
		Title: "Informe", Description: "mensual", DueDate: "2026-05-01", AssignedTo: []string{alice.UserID},
	}, admin.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var stats dto.GroupTaskStats
	resp = env.do(t, http.MethodGet, "/groups/"+group.GroupID+"/tasks/stats", nil, alice.Token)
	decodeJSON(t, resp, &stats)
	assert.Equal(t, dto.GroupTaskStats{Total: 1, Pending: 1}, stats)

	resp = env.do(t, http.MethodDelete, "/groups/"+group.GroupID, nil, admin.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_LogoutRevokesInRedis(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.signup(t, "a@e2e.test", "alice")

	resp := env.do(t, http.MethodPost, "/logout", nil, alice.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/tasks", nil, alice.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
