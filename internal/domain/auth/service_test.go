package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
)

// Mock user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, id string, tier quota.Tier) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

// Mock payment customers
type MockPaymentCustomers struct {
	mock.Mock
}

func (m *MockPaymentCustomers) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	args := m.Called(ctx, name, email)
	return args.String(0), args.Error(1)
}

func TestSignup_CreatesFreeTierUserWithCustomer(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	repo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	customers.On("CreateCustomer", mock.Anything, "New User", "new@example.com").Return("cus_123", nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	u, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "New User",
		Email:           "New@Example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "cus_123", u.StripeCustomerID)
	assert.Equal(t, quota.TierFree, u.Subscription)
	assert.NotEqual(t, "password123", u.PasswordHash)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "Someone",
		Email:           "taken@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	customers.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_OpensSession(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "user@example.com").Return(&user.User{
		ID:           "user-1",
		Name:         "User",
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Subscription: quota.TierPro,
	}, nil)

	u, token, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	sess, ok := sessions.Get(token)
	assert.True(t, ok)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, quota.TierPro, sess.Subscription)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, user.ErrUserNotFound)

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "user@example.com").Return(&user.User{
		ID:           "user-1",
		Email:        "user@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "not-the-password",
	})

	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Zero(t, sessions.Len())
}

func TestLogout_RevokesSession(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	token, err := sessions.Create(session.Identity{UserID: "user-1"})
	assert.NoError(t, err)

	svc.Logout(token)

	_, ok := sessions.Get(token)
	assert.False(t, ok)
}

func TestLogout_WithoutSessionIsNoop(t *testing.T) {
	repo := new(MockUserRepository)
	customers := new(MockPaymentCustomers)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, sessions, customers)

	svc.Logout("")

	assert.Zero(t, sessions.Len())
}
