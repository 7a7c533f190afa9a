package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/menuvio/backoffice/pkg/email"
	"github.com/menuvio/backoffice/pkg/logger"
	"github.com/menuvio/backoffice/pkg/metrics"
	"github.com/menuvio/backoffice/pkg/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSignatureInvalid is returned when the webhook payload does not match
// its Stripe-Signature header under the shared secret.
var ErrSignatureInvalid = errors.New("webhook signature verification failed")

// metadataKeyRestaurantID links an invoice to a restaurant. Set on the
// subscription when checkout is created by the frontend.
const metadataKeyRestaurantID = "restaurantId"

// Service processes Stripe billing events and keeps restaurant and
// subscription state in sync.
type Service struct {
	db            *gorm.DB
	emails        *email.Service
	metrics       *metrics.Metrics
	log           logger.Logger
	webhookSecret string
}

// NewService creates a billing service. emails and m may be nil.
func NewService(db *gorm.DB, emails *email.Service, m *metrics.Metrics, log logger.Logger, webhookSecret string) *Service {
	return &Service{
		db:            db,
		emails:        emails,
		metrics:       m,
		log:           log,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook verifies and processes a Stripe webhook delivery. The
// signature must be checked against the raw body exactly as received;
// reserialization would change the byte layout and break verification.
//
// Only signature failures are surfaced to the caller. Processing failures
// after verification are application-level, not delivery-level: they are
// logged and swallowed so Stripe does not spin up its retry machinery for
// conditions a redelivery cannot fix.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.recordEvent("unknown", "signature_invalid")
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	s.log.Info("stripe webhook received", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "invoice.paid":
		s.processOutcome(string(event.Type), s.handleInvoicePaid(ctx, event))
	case "invoice.payment_failed":
		s.processOutcome(string(event.Type), s.handleInvoicePaymentFailed(ctx, event))
	default:
		s.recordEvent(string(event.Type), "skipped")
	}

	return nil
}

// processOutcome maps a handler result to log and metric entries without
// letting the error escape to the HTTP boundary.
func (s *Service) processOutcome(eventType string, err error) {
	if err == nil {
		s.recordEvent(eventType, "processed")
		return
	}
	if errors.Is(err, errSkipped) {
		s.recordEvent(eventType, "skipped")
		return
	}

	s.log.Error("webhook processing failed", "type", eventType, "error", err)
	sentry.CaptureException(err)
	s.recordEvent(eventType, "error")
}

// errSkipped marks deliveries that reference nothing we track: missing
// restaurant metadata or an unknown restaurant id.
var errSkipped = errors.New("event skipped")

// handleInvoicePaid marks the restaurant active and upserts its
// subscription row keyed by restaurant id.
func (s *Service) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	invoice, restaurant, err := s.resolveInvoiceRestaurant(ctx, event)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Model(restaurant).
		Update("active", true).Error; err != nil {
		return fmt.Errorf("failed to activate restaurant %d: %w", restaurant.ID, err)
	}

	sub := models.Subscription{
		RestaurantID:         restaurant.ID,
		Status:               models.SubscriptionStatusActive,
		StripeSubscriptionID: invoiceSubscriptionID(invoice),
		StripeCustomerID:     invoiceCustomerID(invoice),
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "restaurant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "stripe_subscription_id", "stripe_customer_id", "updated_at",
			}),
		}).
		Create(&sub).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription for restaurant %d: %w", restaurant.ID, err)
	}

	s.log.Info("subscription activated", "restaurant_id", restaurant.ID,
		"stripe_subscription_id", sub.StripeSubscriptionID)
	return nil
}

// handleInvoicePaymentFailed marks the restaurant inactive and downgrades
// the existing subscription row. No row is created here: a failed payment
// without a prior paid invoice leaves no subscription to track.
func (s *Service) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	_, restaurant, err := s.resolveInvoiceRestaurant(ctx, event)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Model(restaurant).
		Update("active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate restaurant %d: %w", restaurant.ID, err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("restaurant_id = ?", restaurant.ID).
		Update("status", models.SubscriptionStatusInactive).Error; err != nil {
		return fmt.Errorf("failed to deactivate subscription for restaurant %d: %w", restaurant.ID, err)
	}

	s.log.Warn("payment failed, restaurant deactivated", "restaurant_id", restaurant.ID)
	s.notifyPaymentFailed(ctx, restaurant)
	return nil
}

// resolveInvoiceRestaurant unwraps the invoice payload and looks up the
// restaurant referenced by its subscription metadata. Returns errSkipped
// when the delivery references nothing we track.
func (s *Service) resolveInvoiceRestaurant(ctx context.Context, event stripe.Event) (*stripe.Invoice, *models.Restaurant, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	restaurantID, ok := invoiceRestaurantID(&invoice)
	if !ok {
		s.log.Info("invoice without restaurant metadata, ignoring", "invoice", invoice.ID)
		return nil, nil, errSkipped
	}

	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).First(&restaurant, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("invoice references unknown restaurant, ignoring",
			"invoice", invoice.ID, "restaurant_id", restaurantID)
		return nil, nil, errSkipped
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load restaurant %d: %w", restaurantID, err)
	}

	return &invoice, &restaurant, nil
}

// notifyPaymentFailed emails the restaurant's account holder. Best effort.
func (s *Service) notifyPaymentFailed(ctx context.Context, restaurant *models.Restaurant) {
	if s.emails == nil {
		return
	}

	var account models.ClientAccount
	if err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurant.ID).
		First(&account).Error; err != nil {
		s.log.Warn("no account to notify for failed payment", "restaurant_id", restaurant.ID)
		return
	}

	subject, html, plainText := buildPaymentFailedEmail(restaurant.Name)
	if err := s.emails.Send(account.Email, restaurant.Name, subject, html, plainText); err != nil {
		s.log.Warn("failed to send payment-failed email", "restaurant_id", restaurant.ID, "error", err)
	}
}

func (s *Service) recordEvent(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(eventType, outcome)
	}
}

// invoiceRestaurantID extracts the restaurant id from the invoice's
// subscription metadata.
func invoiceRestaurantID(invoice *stripe.Invoice) (int, bool) {
	if invoice.SubscriptionDetails == nil {
		return 0, false
	}
	raw, ok := invoice.SubscriptionDetails.Metadata[metadataKeyRestaurantID]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice.Subscription == nil {
		return ""
	}
	return invoice.Subscription.ID
}

func invoiceCustomerID(invoice *stripe.Invoice) string {
	if invoice.Customer == nil {
		return ""
	}
	return invoice.Customer.ID
}
