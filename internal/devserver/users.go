package devserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
)

// User is the backend's account record.
type User struct {
	ID           int64
	Username     string
	Email        string
	Name         string
	PhoneNumber  string
	Role         models.Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// View is the public projection sent to clients.
func (u *User) View() *models.User {
	return &models.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
	}
}

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hash []byte) error
	Delete(ctx context.Context, id int64) error
}

// MemoryRepository keeps users in memory. Usernames are case-insensitive.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
	byName map[string]int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[int64]*User),
		byName: make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := r.byName[key]; ok {
		return nil, ErrAlreadyExists
	}
	r.nextID++
	u := *user
	u.ID = r.nextID
	r.byID[u.ID] = &u
	r.byName[key] = u.ID

	c := u
	return &c, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byName, strings.ToLower(u.Username))
	delete(r.byID, id)
	return nil
}
