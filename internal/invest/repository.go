package invest

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository stores portfolio positions.
type Repository interface {
	Create(ctx context.Context, position *Position) error
	Delete(ctx context.Context, id uint) error
	ByUser(ctx context.Context, userID uint) ([]Position, error)
	Reassign(ctx context.Context, fromUserID, toUserID uint) error
}

// GormRepository persists positions with gorm.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository wires a gorm-backed position repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts a new position row.
func (r *GormRepository) Create(ctx context.Context, position *Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

// Delete removes a position row. Used to roll back a purchase whose debit
// failed.
func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Position{}, id).Error
}

// ByUser returns all positions for a user, oldest first.
func (r *GormRepository) ByUser(ctx context.Context, userID uint) ([]Position, error) {
	var positions []Position
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date ASC").
		Find(&positions).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return positions, nil
}

// Reassign moves every position from one user to another. Used when a
// phone-only account is merged into a named one.
func (r *GormRepository) Reassign(ctx context.Context, fromUserID, toUserID uint) error {
	return r.db.WithContext(ctx).
		Model(&Position{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
