package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

// InMemoryUserRepository keeps users in a map. It enforces the same unique
// constraints as the users table.
type InMemoryUserRepository struct {
	mu     sync.Mutex
	users  map[int]models.User
	nextID int
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  map[int]models.User{},
		nextID: 1,
	}
}

func (r *InMemoryUserRepository) CreateUser(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(0, u.Username, u.Email); err != nil {
		return models.User{}, err
	}

	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id int) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) UpdatePassword(_ context.Context, id int, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = at
	r.users[id] = u
	return nil
}

func (r *InMemoryUserRepository) UpdateProfile(_ context.Context, id int, username, email string, at time.Time) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	if err := r.checkUnique(id, username, email); err != nil {
		return models.User{}, err
	}
	u.Username = username
	u.Email = email
	u.UpdatedAt = at
	r.users[id] = u
	return u, nil
}

// All returns every user ordered by id.
func (r *InMemoryUserRepository) All() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *InMemoryUserRepository) username(id int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Username
}

// Clear removes every user.
func (r *InMemoryUserRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = map[int]models.User{}
	r.nextID = 1
}

func (r *InMemoryUserRepository) checkUnique(selfID int, username, email string) error {
	for id, u := range r.users {
		if id == selfID {
			continue
		}
		if u.Username == username {
			return &UniqueViolationError{Field: "username"}
		}
		if u.Email == email {
			return &UniqueViolationError{Field: "email"}
		}
	}
	return nil
}
