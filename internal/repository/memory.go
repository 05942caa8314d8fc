package repository

import (
	"context"
	"sort"
	"sync"

	"prdflow/pkg/models"
)

// MemoryStore implements Store with in-memory storage. It backs tests and
// local development without a running MongoDB.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []*models.User
	analyses  []*models.DocumentAnalysis
	workflows []*models.Workflow
	checks    []*models.StatusCheck
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) InsertAnalysis(_ context.Context, analysis *models.DocumentAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *analysis
	m.analyses = append(m.analyses, &cp)
	return nil
}

func (m *MemoryStore) ListAnalyses(_ context.Context, userID *string, limit int64) ([]*models.DocumentAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.DocumentAnalysis, 0)
	for _, a := range m.analyses {
		if visibleTo(userID, a.UserID) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

func (m *MemoryStore) GetAnalysis(_ context.Context, id string, userID *string) (*models.DocumentAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.analyses {
		if a.ID == id && visibleTo(userID, a.UserID) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) InsertWorkflow(_ context.Context, workflow *models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *workflow
	m.workflows = append(m.workflows, &cp)
	return nil
}

func (m *MemoryStore) ListWorkflows(_ context.Context, userID *string, limit int64) ([]*models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Workflow, 0)
	for _, w := range m.workflows {
		if visibleTo(userID, w.UserID) {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

func (m *MemoryStore) GetWorkflow(_ context.Context, id string, userID *string) (*models.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.workflows {
		if w.ID == id && visibleTo(userID, w.UserID) {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) DeleteWorkflow(_ context.Context, id string, userID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.workflows {
		if w.ID == id && ownedBy(userID, w.UserID) {
			m.workflows = append(m.workflows[:i], m.workflows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) InsertStatusCheck(_ context.Context, check *models.StatusCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *check
	m.checks = append(m.checks, &cp)
	return nil
}

func (m *MemoryStore) ListStatusChecks(_ context.Context, limit int64) ([]*models.StatusCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.StatusCheck, 0, len(m.checks))
	for _, c := range m.checks {
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// visibleTo mirrors the Mongo read scoping: anonymous callers see every
// record, authenticated callers see their own.
func visibleTo(caller, owner *string) bool {
	if caller == nil {
		return true
	}
	return owner != nil && *owner == *caller
}

// ownedBy mirrors the Mongo delete scoping: anonymous callers own the
// ownerless records.
func ownedBy(caller, owner *string) bool {
	if caller == nil {
		return owner == nil
	}
	return owner != nil && *owner == *caller
}

func truncate[T any](items []T, limit int64) []T {
	if limit > 0 && int64(len(items)) > limit {
		return items[:limit]
	}
	return items
}
