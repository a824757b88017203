package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound indicates the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id uint) (User, error)
	ByPhone(ctx context.Context, phone string) (User, error)
	ByName(ctx context.Context, name string) (User, error)
	ByNameSubstring(ctx context.Context, fragment string) (User, error)
	All(ctx context.Context) ([]User, error)
	UpdateBalance(ctx context.Context, id uint, balance float64) error
	UpdatePhone(ctx context.Context, id uint, phone string) error
	Delete(ctx context.Context, id uint) error
}

// GormRepository stores users in the SQLite demo database.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository builds a repository backed by gorm.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts a user record and fills in the generated identifier.
func (r *GormRepository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// ByID fetches a user by identifier.
func (r *GormRepository) ByID(ctx context.Context, id uint) (User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ByPhone fetches a user by phone number.
func (r *GormRepository) ByPhone(ctx context.Context, phone string) (User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ByName fetches a user by exact, case-insensitive name.
func (r *GormRepository) ByName(ctx context.Context, name string) (User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ByNameSubstring fetches the first user whose name contains the fragment.
func (r *GormRepository) ByNameSubstring(ctx context.Context, fragment string) (User, error) {
	var u User
	pattern := fmt.Sprintf("%%%s%%", strings.ToLower(fragment))
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

// All lists every user ordered by name.
func (r *GormRepository) All(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Order("name").Find(&users).Error
	return users, err
}

// UpdateBalance sets the cash balance for a user.
func (r *GormRepository) UpdateBalance(ctx context.Context, id uint, balance float64) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePhone stores the phone number on a user record.
func (r *GormRepository) UpdatePhone(ctx context.Context, id uint, phone string) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("phone_number", phone)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user record. Only used when merging phone-only accounts.
func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&User{}, id).Error
}
