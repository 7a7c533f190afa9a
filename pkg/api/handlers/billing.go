package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/menuvio/backoffice/pkg/billing"
	"github.com/menuvio/backoffice/pkg/logger"
	"github.com/menuvio/backoffice/pkg/models"
)

// BillingHandler exposes the Stripe webhook endpoint.
type BillingHandler struct {
	billingService *billing.Service
	log            logger.Logger
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(billingService *billing.Service, log logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		log:            log,
	}
}

// HandleWebhook processes a Stripe webhook delivery. The body is read raw
// and passed through untouched; the signature check only holds against the
// exact bytes Stripe sent. Once verification passes the delivery is always
// acknowledged with 200 {"received": true}, whether or not it resulted in
// a state change.
func (h *BillingHandler) HandleWebhook(c echo.Context) error {
	// Bound the body read; Stripe events are small
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, 65536)
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid request.")
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		h.log.Warn("webhook delivery without signature header")
		return c.String(http.StatusBadRequest, "Invalid request.")
	}

	if err := h.billingService.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		if errors.Is(err, billing.ErrSignatureInvalid) {
			h.log.Warn("webhook signature verification failed", "error", err)
			return c.String(http.StatusBadRequest, "Invalid request.")
		}
		return c.String(http.StatusBadRequest, "Invalid request.")
	}

	return c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}
