package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository/repotest"
	"taskmanager/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubNotifier struct {
	mu   sync.Mutex
	jobs []worker.EmailJobPayload
}

func (n *stubNotifier) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, p)
	return nil
}

func (n *stubNotifier) sent() []worker.EmailJobPayload {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]worker.EmailJobPayload(nil), n.jobs...)
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	creds      *repotest.Credentials
	users      *repotest.Users
	tasks      *repotest.Tasks
	groups     *repotest.Groups
	groupTasks *repotest.GroupTasks
	notifier   *stubNotifier
	tokens     *auth.TokenManager

	auth     AuthService
	taskSvc  TaskService
	groupSvc GroupService
	gtSvc    GroupTaskService
	userSvc  UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		creds:      repotest.NewCredentials(),
		users:      repotest.NewUsers(),
		tasks:      repotest.NewTasks(),
		groups:     repotest.NewGroups(),
		groupTasks: repotest.NewGroupTasks(),
		notifier:   &stubNotifier{},
		tokens:     auth.NewTokenManager(testSecret, 10*time.Minute, nil),
	}
	roles := policy.New([]string{"boss@x.com"}, []string{"root@x.com"})
	f.auth = NewAuthService(f.creds, f.users, f.tokens, roles, f.notifier, bcrypt.MinCost)
	f.taskSvc = NewTaskService(f.tasks, f.users)
	f.groupSvc = NewGroupService(f.groups, f.groupTasks, f.users)
	f.gtSvc = NewGroupTaskService(f.groups, f.groupTasks, f.users, f.notifier)
	f.userSvc = NewUserService(f.users, f.tasks, f.groups, f.creds)
	return f
}

// seedUser stores a user with password "pw123" directly in the document store.
func (f *fixture) seedUser(t *testing.T, username string, role model.Role) auth.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        username + "@x.com",
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return auth.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: role}
}
