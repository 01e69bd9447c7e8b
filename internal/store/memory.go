package store

import (
	"context"
	"sync"

	"github.com/kbenson/userapi/internal/models"
)

// Memory is the default process-local store: a slice guarded by an
// RWMutex. The host serves requests concurrently, so every mutation
// takes the write lock.
type Memory struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *Memory) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) Update(_ context.Context, id string, upd UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID != id {
			continue
		}
		if upd.Email != nil {
			for j := range m.users {
				if j != i && m.users[j].Email == *upd.Email {
					return nil, ErrEmailTaken
				}
			}
			m.users[i].Email = *upd.Email
		}
		if upd.Name != nil {
			m.users[i].Name = *upd.Name
		}
		if upd.Role != nil {
			m.users[i].Role = *upd.Role
		}
		if upd.Password != nil {
			m.users[i].Password = *upd.Password
		}
		u := m.users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
