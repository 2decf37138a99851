package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neodrive/internal/domain/quota"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateSubscription(ctx context.Context, id string, tier quota.Tier) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("name", name).Error
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}

func (r *repository) UpdateSubscription(ctx context.Context, id string, tier quota.Tier) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("subscription", tier).Error
}
