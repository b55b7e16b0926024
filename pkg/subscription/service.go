package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/billing"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/gorm"
)

// legalTransitions encodes the subscription status machine. canceled is
// terminal and reachable from every live status; nothing leaves it.
var legalTransitions = map[models.SubscriptionStatus][]models.SubscriptionStatus{
	models.SubscriptionPending: {models.SubscriptionActive, models.SubscriptionCanceled},
	models.SubscriptionActive:  {models.SubscriptionPastDue, models.SubscriptionCanceled},
	models.SubscriptionPastDue: {models.SubscriptionActive, models.SubscriptionCanceled},
}

func canTransition(from, to models.SubscriptionStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Service mediates between local subscription records and the billing
// provider, keeping local state eventually consistent with provider state.
type Service struct {
	db       *gorm.DB
	provider billing.Provider
}

// NewService creates a new subscription service
func NewService(db *gorm.DB, provider billing.Provider) *Service {
	return &Service{db: db, provider: provider}
}

// Subscribe starts a subscription for the user on the given plan. The
// local row is written with status pending before the provider call and
// reconciled with the provider reference afterwards, so a crash between
// the two steps leaves a visible provisional row rather than silent
// provider-side state.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, req models.SubscribeRequest) (*models.UserSubscription, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, domain.NewInternalError(err)
	}

	var plan models.SubscriptionPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", req.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("plan")
		}
		return nil, domain.NewInternalError(err)
	}

	priceID := plan.StripeMonthlyPriceID
	if models.BillingCycle(req.BillingCycle) == models.BillingYearly {
		priceID = plan.StripeYearlyPriceID
	}

	// Pre-write existence check; the live_key unique index backs this
	// up against concurrent subscribes.
	var liveCount int64
	if err := s.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Where("live_key = ?", userID).Count(&liveCount).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if liveCount > 0 {
		return nil, domain.NewConflictError("user already has an active subscription")
	}

	customerID, err := s.provider.EnsureCustomer(ctx, user.Email, user.Name, user.StripeCustomerID)
	if err != nil {
		return nil, domain.NewExternalServiceError("billing", err)
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID != customerID {
		if err := s.db.WithContext(ctx).Model(&user).
			Update("stripe_customer_id", customerID).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
	}

	liveKey := userID
	record := &models.UserSubscription{
		UserID:       userID,
		PlanID:       plan.ID,
		Status:       models.SubscriptionPending,
		BillingCycle: models.BillingCycle(req.BillingCycle),
		LiveKey:      &liveKey,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("user already has an active subscription")
		}
		return nil, domain.NewInternalError(err)
	}

	providerSub, err := s.provider.CreateSubscription(ctx, customerID, priceID, map[string]string{
		"user_id": userID.String(),
		"plan":    plan.Name,
	})
	if err != nil {
		// Roll the provisional row back so the slot frees up. If the
		// delete fails too, the slot stays held by a dead pending row
		// until the user cancels.
		if delErr := s.db.WithContext(ctx).Delete(record).Error; delErr != nil {
			log.Printf("⚠️  Rollback of provisional subscription %s failed: %v", record.ID, delErr)
		}
		return nil, domain.NewExternalServiceError("billing", err)
	}

	if err := s.db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"stripe_subscription_id": providerSub.ID,
		"stripe_price_id":        providerSub.PriceID,
	}).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	record.StripeSubscriptionID = &providerSub.ID
	record.StripePriceID = providerSub.PriceID
	record.Plan = &plan

	return record, nil
}

// Filters returns the user's subscriptions matching the given criteria.
// Read-only, no side effects.
func (s *Service) Filters(ctx context.Context, userID uuid.UUID, req models.SubscriptionFilterRequest) ([]models.UserSubscription, error) {
	query := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *req.CreatedAfter)
	}
	if req.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *req.CreatedBefore)
	}

	var subs []models.UserSubscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return subs, nil
}

// Cancel cancels the user's subscription. Canceling an already-canceled
// subscription is a no-op success so retried requests stay safe.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	var record models.UserSubscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("subscription")
		}
		return nil, domain.NewInternalError(err)
	}

	if record.Status == models.SubscriptionCanceled {
		return &record, nil
	}

	if record.StripeSubscriptionID != nil {
		if err := s.provider.CancelSubscription(ctx, *record.StripeSubscriptionID); err != nil {
			return nil, domain.NewExternalServiceError("billing", err)
		}
	}

	if err := s.markCanceled(ctx, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// ApplyProviderStatus applies a provider-reported status to the local
// record. Unknown references and illegal transitions are ignored: the
// provider may replay or reorder events, and canceled is terminal.
func (s *Service) ApplyProviderStatus(ctx context.Context, providerSubID string, status models.SubscriptionStatus) error {
	var record models.UserSubscription
	err := s.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", providerSubID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return domain.NewInternalError(err)
	}

	if record.Status == status {
		return nil
	}

	if !canTransition(record.Status, status) {
		log.Printf("ignoring illegal subscription transition %s -> %s (sub %s)", record.Status, status, providerSubID)
		return nil
	}

	if status == models.SubscriptionCanceled {
		return s.markCanceled(ctx, &record)
	}

	if err := s.db.WithContext(ctx).Model(&record).
		Update("status", status).Error; err != nil {
		return domain.NewInternalError(err)
	}
	record.Status = status

	return nil
}

// markCanceled performs the terminal transition: status, timestamp, and
// releasing the one-live-subscription slot.
func (s *Service) markCanceled(ctx context.Context, record *models.UserSubscription) error {
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"status":      models.SubscriptionCanceled,
		"canceled_at": now,
		"live_key":    nil,
	}).Error; err != nil {
		return domain.NewInternalError(err)
	}

	record.Status = models.SubscriptionCanceled
	record.CanceledAt = &now
	record.LiveKey = nil

	return nil
}

// ListPlans returns all subscription plans
func (s *Service) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := s.db.WithContext(ctx).Order("name").Find(&plans).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return plans, nil
}

// CreatePlan creates a subscription plan (administrative)
func (s *Service) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.SubscriptionPlan, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SubscriptionPlan{}).
		Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if count > 0 {
		return nil, domain.NewConflictError(fmt.Sprintf("plan %q already exists", req.Name))
	}

	plan := &models.SubscriptionPlan{
		Name:                 req.Name,
		StripeProductID:      req.StripeProductID,
		StripeMonthlyPriceID: req.StripeMonthlyPriceID,
		StripeYearlyPriceID:  req.StripeYearlyPriceID,
	}
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return plan, nil
}
