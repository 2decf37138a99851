package billing

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreatePlan(ctx context.Context, p *SubscriptionPlan) error
	GetPlanByName(ctx context.Context, name string) (*SubscriptionPlan, error)
	CreateHistory(ctx context.Context, h *PaymentHistory) error
	ListHistoriesByUser(ctx context.Context, userID string) ([]*PaymentHistory, error)
	UpdateHistoryStatus(ctx context.Context, stripeSessionID string, status PaymentStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, p *SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetPlanByName(ctx context.Context, name string) (*SubscriptionPlan, error) {
	var p SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateHistory(ctx context.Context, h *PaymentHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) ListHistoriesByUser(ctx context.Context, userID string) ([]*PaymentHistory, error) {
	var histories []*PaymentHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&histories).Error
	return histories, err
}

func (r *repository) UpdateHistoryStatus(ctx context.Context, stripeSessionID string, status PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&PaymentHistory{}).
		Where("stripe_session_id = ?", stripeSessionID).
		Update("status", status).Error
}
