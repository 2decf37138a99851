package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
)

// Mock billing repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePlan(ctx context.Context, p *SubscriptionPlan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetPlanByName(ctx context.Context, name string) (*SubscriptionPlan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionPlan), args.Error(1)
}

func (m *MockRepository) CreateHistory(ctx context.Context, h *PaymentHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockRepository) ListHistoriesByUser(ctx context.Context, userID string) ([]*PaymentHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*PaymentHistory), args.Error(1)
}

func (m *MockRepository) UpdateHistoryStatus(ctx context.Context, stripeSessionID string, status PaymentStatus) error {
	args := m.Called(ctx, stripeSessionID, status)
	return args.Error(0)
}

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

// Mock payment provider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	args := m.Called(ctx, name, email)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) CreateProduct(ctx context.Context, name string, priceCents int64) (string, error) {
	args := m.Called(ctx, name, priceCents)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) CreateCheckout(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) ParseEvent(payload []byte, signature string) (*WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

func checkoutSession(userID string) session.Session {
	return session.Session{Identity: session.Identity{UserID: userID, Subscription: quota.TierFree}}
}

func TestCheckout_RecordsPendingHistory(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	users.On("GetByID", mock.Anything, "user-1").Return(&user.User{
		ID:           "user-1",
		Email:        "user@example.com",
		Subscription: quota.TierFree,
	}, nil)
	repo.On("GetPlanByName", mock.Anything, "pro").Return(&SubscriptionPlan{
		ID:       "plan-pro",
		Name:     "pro",
		Price:    999,
		StripeID: "price_pro",
	}, nil)
	provider.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(p CheckoutParams) bool {
		return p.PriceID == "price_pro" &&
			p.CustomerEmail == "user@example.com" &&
			p.Metadata["user_id"] == "user-1" &&
			p.Metadata["plan"] == "pro"
	})).Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout/cs_1"}, nil)
	repo.On("CreateHistory", mock.Anything, mock.MatchedBy(func(h *PaymentHistory) bool {
		return h.UserID == "user-1" &&
			h.StripeSessionID == "cs_1" &&
			h.Amount == 999 &&
			h.Status == StatusPending
	})).Return(nil)

	result, err := svc.Checkout(context.Background(), checkoutSession("user-1"), CheckoutRequest{
		Plan:       "pro",
		SuccessURL: "https://app/success",
		CancelURL:  "https://app/cancel",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout/cs_1", result.URL)
	repo.AssertExpectations(t)
}

func TestCheckout_AlreadySubscribed(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	users.On("GetByID", mock.Anything, "user-1").Return(&user.User{
		ID:           "user-1",
		Subscription: quota.TierPro,
	}, nil)
	repo.On("GetPlanByName", mock.Anything, "pro").Return(&SubscriptionPlan{
		ID: "plan-pro", Name: "pro", Price: 999, StripeID: "price_pro",
	}, nil)

	_, err := svc.Checkout(context.Background(), checkoutSession("user-1"), CheckoutRequest{
		Plan:       "pro",
		SuccessURL: "https://app/success",
		CancelURL:  "https://app/cancel",
	})

	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	provider.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
}

func TestCheckout_UnknownPlan(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	users.On("GetByID", mock.Anything, "user-1").Return(&user.User{ID: "user-1"}, nil)
	repo.On("GetPlanByName", mock.Anything, "platinum").Return(nil, ErrPlanNotFound)

	_, err := svc.Checkout(context.Background(), checkoutSession("user-1"), CheckoutRequest{
		Plan:       "platinum",
		SuccessURL: "https://app/success",
		CancelURL:  "https://app/cancel",
	})

	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestHandleWebhook_CompletedUpgradesUserAndSessions(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	token, err := sessions.Create(session.Identity{UserID: "user-1", Subscription: quota.TierFree})
	assert.NoError(t, err)

	provider.On("ParseEvent", mock.Anything, "sig").Return(&WebhookEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_1",
		Metadata:  map[string]string{"user_id": "user-1", "plan": "pro"},
	}, nil)
	users.On("UpdateSubscription", mock.Anything, "user-1", quota.TierPro).Return(nil)
	repo.On("UpdateHistoryStatus", mock.Anything, "cs_1", StatusCompleted).Return(nil)

	err = svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	sess, ok := sessions.Get(token)
	assert.True(t, ok)
	assert.Equal(t, quota.TierPro, sess.Subscription)
	users.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestHandleWebhook_ExpiredCancelsHistory(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	provider.On("ParseEvent", mock.Anything, "sig").Return(&WebhookEvent{
		Type:      "checkout.session.expired",
		SessionID: "cs_1",
	}, nil)
	repo.On("UpdateHistoryStatus", mock.Anything, "cs_1", StatusCancelled).Return(nil)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	users.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	provider.On("ParseEvent", mock.Anything, "bad").Return(nil, assert.AnError)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhook_UnknownEventIgnored(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	provider.On("ParseEvent", mock.Anything, "sig").Return(&WebhookEvent{
		Type: "invoice.payment_succeeded",
	}, nil)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateHistoryStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_PersistsPlanWithProviderPrice(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUserRepository)
	provider := new(MockPaymentProvider)
	sessions := session.NewStore(time.Hour)
	svc := NewService(repo, users, provider, sessions)

	provider.On("CreateProduct", mock.Anything, "premium", int64(1999)).Return("price_premium", nil)
	repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p *SubscriptionPlan) bool {
		return p.Name == "premium" && p.Price == 1999 && p.StripeID == "price_premium"
	})).Return(nil)

	plan, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:  "premium",
		Price: 1999,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	repo.AssertExpectations(t)
}
