package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
)

// PaymentCustomers creates a billing customer for a new account. Implemented
// by the billing provider; auth only needs the resulting customer id.
type PaymentCustomers interface {
	CreateCustomer(ctx context.Context, name, email string) (string, error)
}

// Service contains signup/login/logout business logic. New accounts start on
// the free tier with a payment customer attached.
type Service struct {
	users     user.Repository
	sessions  *session.Store
	customers PaymentCustomers
}

func NewService(users user.Repository, sessions *session.Store, customers PaymentCustomers) *Service {
	return &Service{users: users, sessions: sessions, customers: customers}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customerID, err := s.customers.CreateCustomer(ctx, req.Name, email)
	if err != nil {
		return nil, fmt.Errorf("create payment customer: %w", err)
	}

	u := &user.User{
		ID:               uuid.New().String(),
		StripeCustomerID: customerID,
		Name:             req.Name,
		Email:            email,
		PasswordHash:     string(hash),
		Subscription:     quota.TierFree,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and opens a session. A missing account and a
// wrong password are reported separately, matching the HTTP surface
// (404 vs 401).
func (s *Service) Login(ctx context.Context, req LoginRequest) (*user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidPassword
	}

	token, err := s.sessions.Create(session.Identity{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Subscription: u.Subscription,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return u, token, nil
}

func (s *Service) Logout(token string) {
	if token == "" {
		log.Println("logout without an active session")
		return
	}
	s.sessions.Revoke(token)
}
