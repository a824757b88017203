package invest

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory position store for tests and for running
// without a database file.
type MemoryRepository struct {
	mu        sync.Mutex
	nextID    uint
	positions map[uint][]Position
}

// NewMemoryRepository constructs an empty in-memory position store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, positions: make(map[uint][]Position)}
}

// Create appends a position for its user.
func (r *MemoryRepository) Create(_ context.Context, position *Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	position.ID = r.nextID
	r.nextID++
	r.positions[position.UserID] = append(r.positions[position.UserID], *position)
	return nil
}

// Delete removes a position by ID.
func (r *MemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, positions := range r.positions {
		for i, p := range positions {
			if p.ID == id {
				r.positions[userID] = append(positions[:i], positions[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// ByUser returns the positions recorded for a user.
func (r *MemoryRepository) ByUser(_ context.Context, userID uint) ([]Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Position, len(r.positions[userID]))
	copy(out, r.positions[userID])
	return out, nil
}

// Reassign moves all positions from one user to another.
func (r *MemoryRepository) Reassign(_ context.Context, fromUserID, toUserID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := r.positions[fromUserID]
	if len(moved) == 0 {
		return nil
	}
	for i := range moved {
		moved[i].UserID = toUserID
	}
	r.positions[toUserID] = append(r.positions[toUserID], moved...)
	delete(r.positions, fromUserID)
	return nil
}
