package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/billing"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/subscription"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandler handles subscription and plan endpoints
type SubscriptionHandler struct {
	subs      *subscription.Service
	webhook   *billing.WebhookHandler
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subs *subscription.Service, webhook *billing.WebhookHandler, errs *errors.Mapper) *SubscriptionHandler {
	return &SubscriptionHandler{
		subs:      subs,
		webhook:   webhook,
		validator: validator.New(),
		errs:      errs,
	}
}

// Subscribe starts a subscription for the authenticated user
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	sub, err := h.subs.Subscribe(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, sub)
}

// Filters lists the caller's subscriptions, optionally narrowed by
// status and creation date range.
func (h *SubscriptionHandler) Filters(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.SubscriptionFilterRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	subs, err := h.subs.Filters(c.Request().Context(), userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, subs)
}

// Cancel cancels the caller's latest subscription. Canceling an already
// canceled subscription is a no-op success.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	sub, err := h.subs.Cancel(c.Request().Context(), userID)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, sub)
}

// ListPlans lists the available subscription plans
func (h *SubscriptionHandler) ListPlans(c echo.Context) error {
	plans, err := h.subs.ListPlans(c.Request().Context())
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, plans)
}

// CreatePlan creates a subscription plan. Admin only.
func (h *SubscriptionHandler) CreatePlan(c echo.Context) error {
	var req models.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	plan, err := h.subs.CreatePlan(c.Request().Context(), req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, plan)
}

// Webhook receives billing provider events. The provider retries on
// non-2xx, so signature failures return 400 and processing failures 500.
func (h *SubscriptionHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.webhook.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		if billing.IsSignatureError(err) {
			return c.NoContent(http.StatusBadRequest)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
