package user

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]User
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, users: make(map[uint]User)}
}

func (r *memoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *memoryRepository) ByID(_ context.Context, id uint) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) ByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber != nil && *u.PhoneNumber == phone {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) ByName(_ context.Context, name string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) ByNameSubstring(_ context.Context, fragment string) (User, error) {
	all, _ := r.All(context.Background())
	needle := strings.ToLower(fragment)
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) All(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *memoryRepository) UpdateBalance(_ context.Context, id uint, balance float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Balance = balance
	r.users[id] = u
	return nil
}

func (r *memoryRepository) UpdatePhone(_ context.Context, id uint, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PhoneNumber = &phone
	r.users[id] = u
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
