package user

import (
	"time"

	"neodrive/internal/domain/quota"
)

// User is an account holder. The subscription column is the authoritative
// tier; live sessions carry a copy that billing refreshes on change.
type User struct {
	ID               string     `gorm:"column:id;primaryKey" json:"id"`
	StripeCustomerID string     `gorm:"column:stripe_customer_id" json:"-"`
	Name             string     `gorm:"column:name" json:"name"`
	Email            string     `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash     string     `gorm:"column:password_hash" json:"-"`
	Subscription     quota.Tier `gorm:"column:subscription" json:"subscription"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }
