package billing

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
)

// CheckoutParams carries everything the provider needs to open a hosted
// checkout page for a plan.
type CheckoutParams struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession is the provider's handle for an opened checkout.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified provider event, reduced to the fields the
// service acts on.
type WebhookEvent struct {
	Type      string
	SessionID string
	Metadata  map[string]string
}

// PaymentProvider abstracts the card processor. The Stripe implementation
// lives in stripe.go; tests substitute a mock.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, name, email string) (string, error)
	CreateProduct(ctx context.Context, name string, priceCents int64) (string, error)
	CreateCheckout(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	ParseEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// SessionTiers propagates a tier change into every live session of a user.
type SessionTiers interface {
	UpdateSubscription(userID string, tier quota.Tier)
}

type Service struct {
	repo     Repository
	users    user.Repository
	provider PaymentProvider
	sessions SessionTiers
}

func NewService(repo Repository, users user.Repository, provider PaymentProvider, sessions SessionTiers) *Service {
	return &Service{repo: repo, users: users, provider: provider, sessions: sessions}
}

// Checkout opens a hosted checkout for the named plan and records a pending
// history row keyed by the provider's session id. The webhook resolves it.
func (s *Service) Checkout(ctx context.Context, sess session.Session, req CheckoutRequest) (*CheckoutResponse, error) {
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetPlanByName(ctx, req.Plan)
	if err != nil {
		return nil, err
	}

	tier, ok := tierForPlan(plan.Name)
	if !ok {
		return nil, fmt.Errorf("plan %q maps to no known tier: %w", plan.Name, ErrPlanNotFound)
	}
	if u.Subscription == tier {
		return nil, ErrAlreadySubscribed
	}

	checkout, err := s.provider.CreateCheckout(ctx, CheckoutParams{
		PriceID:       plan.StripeID,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CustomerEmail: u.Email,
		Metadata: map[string]string{
			"user_id": u.ID,
			"plan":    plan.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	history := &PaymentHistory{
		ID:              uuid.New().String(),
		UserID:          u.ID,
		PlanID:          plan.ID,
		StripeSessionID: checkout.ID,
		Amount:          plan.Price,
		Status:          StatusPending,
	}
	if err := s.repo.CreateHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("record payment history: %w", err)
	}

	return &CheckoutResponse{URL: checkout.URL}, nil
}

// HandleWebhook verifies the event signature and applies the outcome. A
// completed checkout upgrades the user and every live session; an expired one
// only cancels the history row. Unknown event types are acknowledged and
// ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		return ErrInvalidSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.applyCompletedCheckout(ctx, event)
	case "checkout.session.expired":
		if err := s.repo.UpdateHistoryStatus(ctx, event.SessionID, StatusCancelled); err != nil {
			return fmt.Errorf("cancel payment history: %w", err)
		}
		return nil
	default:
		log.Printf("webhook: ignoring event type %q", event.Type)
		return nil
	}
}

func (s *Service) applyCompletedCheckout(ctx context.Context, event *WebhookEvent) error {
	userID := event.Metadata["user_id"]
	planName := event.Metadata["plan"]
	if userID == "" || planName == "" {
		return fmt.Errorf("checkout %s: missing user_id or plan in metadata", event.SessionID)
	}

	tier, ok := tierForPlan(planName)
	if !ok {
		return fmt.Errorf("checkout %s: unknown plan %q", event.SessionID, planName)
	}

	if err := s.users.UpdateSubscription(ctx, userID, tier); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	s.sessions.UpdateSubscription(userID, tier)

	if err := s.repo.UpdateHistoryStatus(ctx, event.SessionID, StatusCompleted); err != nil {
		return fmt.Errorf("complete payment history: %w", err)
	}
	log.Printf("user %s upgraded to %s via checkout %s", userID, tier, event.SessionID)
	return nil
}

// Histories returns the caller's payment history, newest first.
func (s *Service) Histories(ctx context.Context, userID string) ([]*PaymentHistory, error) {
	return s.repo.ListHistoriesByUser(ctx, userID)
}

// CreateProduct registers a plan with the provider and persists it. The
// provider returns the recurring price id used later at checkout.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*SubscriptionPlan, error) {
	priceID, err := s.provider.CreateProduct(ctx, req.Name, req.Price)
	if err != nil {
		return nil, fmt.Errorf("create provider product: %w", err)
	}

	plan := &SubscriptionPlan{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Price:    req.Price,
		StripeID: priceID,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("persist plan: %w", err)
	}
	return plan, nil
}

// tierForPlan maps a plan name onto a storage tier. Plans whose name is not a
// known tier are sellable only once a tier exists for them.
func tierForPlan(name string) (quota.Tier, bool) {
	switch quota.Tier(strings.ToLower(name)) {
	case quota.TierFree:
		return quota.TierFree, true
	case quota.TierPro:
		return quota.TierPro, true
	case quota.TierPremium:
		return quota.TierPremium, true
	default:
		return "", false
	}
}
