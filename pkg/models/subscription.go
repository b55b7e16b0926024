package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the closed status enumeration for a user subscription.
// canceled is terminal: no transition leaves it.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// BillingCycle selects which provider price a subscription bills against
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// SubscriptionPlan is an admin-maintained plan, immutable to end users
type SubscriptionPlan struct {
	Base
	Name                 string `gorm:"uniqueIndex;not null" json:"name"`
	StripeProductID      string `json:"stripe_product_id"`
	StripeMonthlyPriceID string `json:"stripe_monthly_price_id"`
	StripeYearlyPriceID  string `json:"stripe_yearly_price_id"`
}

// UserSubscription links a user to a billing-provider subscription.
// Rows are never hard-deleted; cancellation is a status transition.
// The live_key column backs the one-live-subscription-per-user unique
// index: it mirrors user_id while the row is live and is cleared on
// cancellation so canceled history rows don't collide.
type UserSubscription struct {
	Base
	UserID               uuid.UUID          `gorm:"type:uuid;index;not null" json:"user_id"`
	PlanID               uuid.UUID          `gorm:"type:uuid;index;not null" json:"plan_id"`
	Status               SubscriptionStatus `gorm:"size:20;index;not null" json:"status"`
	BillingCycle         BillingCycle       `gorm:"size:10;not null" json:"billing_cycle"`
	StripeSubscriptionID *string            `gorm:"uniqueIndex" json:"stripe_subscription_id,omitempty"`
	StripePriceID        string             `json:"stripe_price_id"`
	LiveKey              *uuid.UUID         `gorm:"type:uuid;uniqueIndex;column:live_key" json:"-"`
	CanceledAt           *time.Time         `json:"canceled_at,omitempty"`

	User *User             `gorm:"foreignKey:UserID" json:"-"`
	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// IsLive reports whether the subscription still occupies the user's
// single live-subscription slot.
func (s *UserSubscription) IsLive() bool {
	return s.Status != SubscriptionCanceled
}

// SubscribeRequest starts a subscription for the authenticated user
type SubscribeRequest struct {
	PlanID       uuid.UUID `json:"plan_id" validate:"required"`
	BillingCycle string    `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
}

// SubscriptionFilterRequest narrows a subscription listing
type SubscriptionFilterRequest struct {
	Status        string     `json:"status" validate:"omitempty,oneof=pending active past_due canceled"`
	CreatedAfter  *time.Time `json:"created_after"`
	CreatedBefore *time.Time `json:"created_before"`
}

// CreatePlanRequest creates or updates a subscription plan (admin only)
type CreatePlanRequest struct {
	Name                 string `json:"name" validate:"required,min=2"`
	StripeProductID      string `json:"stripe_product_id" validate:"required"`
	StripeMonthlyPriceID string `json:"stripe_monthly_price_id" validate:"required"`
	StripeYearlyPriceID  string `json:"stripe_yearly_price_id" validate:"required"`
}
