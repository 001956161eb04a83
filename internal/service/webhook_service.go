package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"classifieds-service/internal/mailer"
	"classifieds-service/internal/models"
	"classifieds-service/internal/payment"
	"classifieds-service/internal/store"
	"classifieds-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookService is the single point where an external payment confirmation
// becomes an authoritative status change.
type WebhookService struct {
	store         AdStore
	mailer        mailer.Mailer
	publisher     Publisher
	webhookSecret string
	tolerance     time.Duration
	logger        *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(adStore AdStore, m mailer.Mailer, publisher Publisher, webhookSecret string) *WebhookService {
	return &WebhookService{
		store:         adStore,
		mailer:        m,
		publisher:     publisher,
		webhookSecret: webhookSecret,
		tolerance:     payment.DefaultSignatureTolerance,
		logger:        util.GetLogger(),
	}
}

// HandleEvent verifies and processes one raw webhook delivery. The
// signature is checked against the raw bytes before any JSON decoding.
// A nil return acknowledges the delivery to the gateway; a non-nil return
// makes the transport report failure so the gateway redelivers.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	ctx, span := util.StartSpan(ctx, "WebhookService.HandleEvent")
	defer span.End()

	if err := payment.VerifySignature(payload, signatureHeader, s.webhookSecret, s.tolerance); err != nil {
		util.WebhookSignatureFailures.Inc()
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return &GatewayError{Op: "webhook signature verification", Err: err}
	}

	var event payment.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return &GatewayError{Op: "webhook payload decoding", Err: err}
	}

	util.WebhookEventsTotal.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case payment.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, &event)

	case payment.EventCheckoutExpired:
		// Abandoned checkout: the record quietly stays pending_payment.
		s.logger.Info("Checkout session expired",
			zap.String("session_id", event.Data.SessionID))
		return nil

	default:
		s.logger.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event *payment.Event) error {
	processed, err := s.store.IsEventProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Webhook event already processed", zap.String("event_id", event.ID))
		return nil
	}

	adID, ok := adIDFromMetadata(event.Data.Metadata)
	if !ok {
		// Anomaly, not an error: acknowledging stops the gateway from
		// redelivering an event we can never apply.
		util.WebhookAnomaliesTotal.Inc()
		s.logger.Error("Webhook event carries no usable ad id",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.Data.SessionID))
		return nil
	}

	// The gateway-confirmed total is authoritative over anything the
	// client computed.
	err = s.store.MarkAdPaid(ctx, adID, event.Data.PaymentReference, event.Data.AmountTotal)
	switch {
	case errors.Is(err, store.ErrNotFound):
		util.WebhookAnomaliesTotal.Inc()
		s.logger.Error("Webhook references unknown ad record",
			zap.String("event_id", event.ID),
			zap.Int64("ad_id", adID))
		return nil

	case errors.Is(err, store.ErrPreconditionFailed):
		// Redelivered confirmation: the transition already applied once.
		s.logger.Info("Ad already past pending_payment, ignoring redelivery",
			zap.String("event_id", event.ID),
			zap.Int64("ad_id", adID))
		if markErr := s.store.MarkEventProcessed(ctx, event.ID, event.Type); markErr != nil {
			s.logger.Error("Failed to mark event processed", zap.Error(markErr))
		}
		return nil

	case err != nil:
		// Store failure is a hard error: report it so the gateway
		// redelivers instead of silently losing the confirmation.
		return fmt.Errorf("failed to mark ad paid: %w", err)
	}

	util.AdsPaidTotal.Inc()
	s.logger.Info("Payment confirmed, ad entering moderation queue",
		zap.Int64("ad_id", adID),
		zap.String("payment_reference", event.Data.PaymentReference),
		zap.Int64("amount_total", event.Data.AmountTotal))

	if err := s.store.MarkEventProcessed(ctx, event.ID, event.Type); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	s.sendReceipt(ctx, adID, event.Data.AmountTotal)

	lifecycleEvent := &models.AdPaymentConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAdPaymentConfirmed,
			Timestamp: time.Now(),
		},
		AdID:             adID,
		PaymentReference: event.Data.PaymentReference,
		AmountTotal:      event.Data.AmountTotal,
	}
	if err := s.publisher.PublishAdPaymentConfirmed(ctx, lifecycleEvent); err != nil {
		s.logger.Error("Failed to publish AdPaymentConfirmed event", zap.Error(err))
	}

	return nil
}

// sendReceipt delivers the payment receipt. Best-effort: a notification
// failure never bubbles up to the webhook response, which would only
// trigger spurious payment-event redelivery.
func (s *WebhookService) sendReceipt(ctx context.Context, adID int64, amountTotal int64) {
	ad, err := s.store.GetAdByID(ctx, adID)
	if err != nil {
		util.NotificationFailuresTotal.WithLabelValues("receipt").Inc()
		s.logger.Error("Failed to load ad for receipt", zap.Int64("ad_id", adID), zap.Error(err))
		return
	}

	subject, htmlBody, textBody := mailer.ReceiptEmail(ad, amountTotal)
	if err := s.mailer.Send(ctx, ad.Email, subject, htmlBody, textBody); err != nil {
		util.NotificationFailuresTotal.WithLabelValues("receipt").Inc()
		s.logger.Error("Failed to send receipt email",
			zap.Int64("ad_id", adID),
			zap.Error(err))
	}
}

func adIDFromMetadata(metadata map[string]string) (int64, bool) {
	raw, ok := metadata["ad_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
