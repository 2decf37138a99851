package billing

import "time"

// SubscriptionPlan is a purchasable tier backed by a Stripe price.
type SubscriptionPlan struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;not null" json:"name"`
	Price     int64  `gorm:"not null" json:"price"` // cents per month
	StripeID  string `gorm:"not null" json:"stripeId"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusCancelled PaymentStatus = "cancelled"
)

// PaymentHistory records one checkout attempt. A row is created pending when
// the checkout session opens and resolved by the webhook.
type PaymentHistory struct {
	ID              string        `gorm:"primaryKey" json:"id"`
	UserID          string        `gorm:"index;not null" json:"userId"`
	PlanID          string        `gorm:"not null" json:"planId"`
	StripeSessionID string        `gorm:"uniqueIndex;not null" json:"stripeSessionId"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Status          PaymentStatus `gorm:"not null" json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (PaymentHistory) TableName() string {
	return "payment_histories"
}
