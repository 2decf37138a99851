package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SessionNames lets profile changes propagate into live sessions.
type SessionNames interface {
	UpdateName(userID, name string)
}

// Service covers profile mutations: display name and password changes.
type Service struct {
	users    Repository
	sessions SessionNames
}

func NewService(users Repository, sessions SessionNames) *Service {
	return &Service{users: users, sessions: sessions}
}

// ChangeName updates the display name. A name identical to the current one
// is rejected so the client gets a definite signal instead of a silent no-op.
func (s *Service) ChangeName(ctx context.Context, userID, newName string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Name == newName {
		return ErrSameName
	}

	if err := s.users.UpdateName(ctx, userID, newName); err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	s.sessions.UpdateName(userID, newName)
	return nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
