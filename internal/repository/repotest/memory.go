// Package repotest provides in-memory implementations of the repository
// interfaces for service and router tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
)

// ── Credentials ──────────────────────────────────────────────────────────────

type Credentials struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Credential
	// DeleteErr, when set, is returned by Delete.
	DeleteErr error
}

func NewCredentials() *Credentials {
	return &Credentials{rows: map[uuid.UUID]model.Credential{}}
}

func (s *Credentials) Create(_ context.Context, c *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if strings.EqualFold(row.Email, c.Email) {
			return repository.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.rows[c.ID] = *c
	return nil
}

func (s *Credentials) FindByEmail(_ context.Context, email string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if strings.EqualFold(row.Email, email) {
			c := row
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Credentials) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range s.rows {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return repository.ErrDuplicate
		}
	}
	row.Email = email
	s.rows[id] = row
	return nil
}

func (s *Credentials) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len returns the number of stored credentials.
func (s *Credentials) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ── Users ────────────────────────────────────────────────────────────────────

type Users struct {
	mu   sync.Mutex
	docs map[string]model.User
	// CreateErr and UpdateErr, when set, are returned by Create and Update.
	CreateErr error
	UpdateErr error
}

func NewUsers() *Users { return &Users{docs: map[string]model.User{}} }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.docs[u.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, d := range s.docs {
		if d.Username == u.Username || d.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.docs[u.ID] = *u
	return nil
}

func (s *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *Users) FindByIDs(_ context.Context, ids []string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if d, ok := s.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.findBy(func(u model.User) bool { return u.Username == username })
}

func (s *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findBy(func(u model.User) bool { return u.Email == email })
}

func (s *Users) findBy(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if match(d) {
			u := d
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Users) Update(_ context.Context, id string, p model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range s.docs {
		if otherID == id {
			continue
		}
		if (p.Username != nil && other.Username == *p.Username) || (p.Email != nil && other.Email == *p.Email) {
			return nil, repository.ErrDuplicate
		}
	}
	p.Apply(&d)
	s.docs[id] = d
	return &d, nil
}

func (s *Users) SetLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.LastLogin = &at
	s.docs[id] = d
	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Len returns the number of stored user documents.
func (s *Users) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ── Tasks ────────────────────────────────────────────────────────────────────

type Tasks struct {
	mu   sync.Mutex
	docs map[string]model.Task
}

func NewTasks() *Tasks { return &Tasks{docs: map[string]model.Task{}} }

func (s *Tasks) Create(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[t.ID]; ok {
		return repository.ErrDuplicate
	}
	s.docs[t.ID] = *t
	return nil
}

func (s *Tasks) FindByID(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *Tasks) ListByOwner(_ context.Context, ownerID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Tasks) Update(_ context.Context, id string, p model.TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Apply(&d)
	s.docs[id] = d
	return &d, nil
}

func (s *Tasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *Tasks) DeleteByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.OwnerID == ownerID {
			delete(s.docs, id)
		}
	}
	return nil
}

// Len returns the number of stored tasks.
func (s *Tasks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ── Groups ───────────────────────────────────────────────────────────────────

type Groups struct {
	mu   sync.Mutex
	docs map[string]model.Group
}

func NewGroups() *Groups { return &Groups{docs: map[string]model.Group{}} }

func (s *Groups) Create(_ context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == g.ID || d.Name == g.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	s.docs[g.ID] = cp
	return nil
}

func (s *Groups) FindByID(_ context.Context, id string) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Members = append([]string(nil), d.Members...)
	return &d, nil
}

func (s *Groups) FindByName(_ context.Context, name string) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.Name == name {
			g := d
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Groups) ListByCreator(_ context.Context, userID string) ([]model.Group, error) {
	return s.list(func(g model.Group) bool { return g.CreatedBy == userID }), nil
}

func (s *Groups) ListByMember(_ context.Context, userID string) ([]model.Group, error) {
	return s.list(func(g model.Group) bool { return g.IsMember(userID) }), nil
}

func (s *Groups) list(match func(model.Group) bool) []model.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Group
	for _, d := range s.docs {
		if match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Groups) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *Groups) AddMember(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	if !d.IsMember(userID) {
		d.Members = append(d.Members, userID)
	}
	s.docs[groupID] = d
	return nil
}

func (s *Groups) RemoveMember(_ context.Context, groupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	d.Members = without(d.Members, userID)
	s.docs[groupID] = d
	return nil
}

func (s *Groups) RemoveMemberEverywhere(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		d.Members = without(d.Members, userID)
		s.docs[id] = d
	}
	return nil
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of stored groups.
func (s *Groups) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ── Group tasks ──────────────────────────────────────────────────────────────

type GroupTasks struct {
	mu   sync.Mutex
	docs map[string]model.GroupTask
	// DeleteByGroupErr, when set, is returned by DeleteByGroup.
	DeleteByGroupErr error
}

func NewGroupTasks() *GroupTasks { return &GroupTasks{docs: map[string]model.GroupTask{}} }

func (s *GroupTasks) Create(_ context.Context, t *model.GroupTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[t.ID]; ok {
		return repository.ErrDuplicate
	}
	s.docs[t.ID] = *t
	return nil
}

func (s *GroupTasks) FindByID(_ context.Context, groupID, taskID string) (*model.GroupTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[taskID]
	if !ok || d.GroupID != groupID {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *GroupTasks) ListByGroup(_ context.Context, groupID string) ([]model.GroupTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GroupTask
	for _, d := range s.docs {
		if d.GroupID == groupID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *GroupTasks) UpdateStatus(_ context.Context, groupID, taskID, status, updatedBy string, at time.Time) (*model.GroupTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[taskID]
	if !ok || d.GroupID != groupID {
		return nil, repository.ErrNotFound
	}
	d.Status, d.UpdatedBy, d.UpdatedAt = status, updatedBy, at
	s.docs[taskID] = d
	return &d, nil
}

func (s *GroupTasks) Delete(_ context.Context, groupID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[taskID]
	if !ok || d.GroupID != groupID {
		return repository.ErrNotFound
	}
	delete(s.docs, taskID)
	return nil
}

func (s *GroupTasks) DeleteByGroup(_ context.Context, groupID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteByGroupErr != nil {
		return 0, s.DeleteByGroupErr
	}
	var n int64
	for id, d := range s.docs {
		if d.GroupID == groupID {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored group tasks.
func (s *GroupTasks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Compile-time interface checks.
var (
	_ repository.CredentialRepository = (*Credentials)(nil)
	_ repository.UserRepository       = (*Users)(nil)
	_ repository.TaskRepository       = (*Tasks)(nil)
	_ repository.GroupRepository      = (*Groups)(nil)
	_ repository.GroupTaskRepository  = (*GroupTasks)(nil)
)
