package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classifieds-service/internal/mailer"
	"classifieds-service/internal/models"
	"classifieds-service/internal/payment"
	"classifieds-service/internal/store"
	"classifieds-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Moderation actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ModerationService applies the operator-driven terminal transitions.
type ModerationService struct {
	store     AdStore
	gateway   payment.Gateway
	mailer    mailer.Mailer
	publisher Publisher
	locker    Locker
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(adStore AdStore, gateway payment.Gateway, m mailer.Mailer, publisher Publisher, locker Locker, lockTTL time.Duration) *ModerationService {
	return &ModerationService{
		store:     adStore,
		gateway:   gateway,
		mailer:    m,
		publisher: publisher,
		locker:    locker,
		lockTTL:   lockTTL,
		logger:    util.GetLogger(),
	}
}

// ListPending returns the moderation queue, newest first.
func (s *ModerationService) ListPending(ctx context.Context) ([]models.Ad, error) {
	return s.store.ListAdsByStatus(ctx, models.AdStatusPending)
}

// Moderate approves or rejects a pending ad. Rejection issues a full
// refund before the status transition; a failed refund leaves the record
// pending so the operator can retry. The store's conditional update is
// the arbiter between racing moderators: exactly one wins, the other
// gets a PreconditionError.
func (s *ModerationService) Moderate(ctx context.Context, adID int64, action, comment string) (*models.Ad, error) {
	ctx, span := util.StartSpan(ctx, "ModerationService.Moderate")
	defer span.End()

	if action != ActionApprove && action != ActionReject {
		return nil, &ValidationError{Fields: map[string]string{
			"action": "must be approve or reject",
		}}
	}

	// The per-ad lock narrows the window in which two reject calls could
	// both reach the refund step. If Redis is unavailable we proceed; the
	// conditional update still prevents a double transition.
	locked, err := s.locker.AcquireModerationLock(ctx, adID, s.lockTTL)
	if err != nil {
		s.logger.Warn("Moderation lock unavailable, relying on store guard",
			zap.Int64("ad_id", adID),
			zap.Error(err))
	} else if !locked {
		return nil, &PreconditionError{Reason: "moderation already in progress for this ad"}
	} else {
		defer func() {
			if err := s.locker.ReleaseModerationLock(context.WithoutCancel(ctx), adID); err != nil {
				s.logger.Warn("Failed to release moderation lock",
					zap.Int64("ad_id", adID),
					zap.Error(err))
			}
		}()
	}

	ad, err := s.store.GetAdByID(ctx, adID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{AdID: adID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ad: %w", err)
	}

	if ad.Status != models.AdStatusPending {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("ad is %s, not pending", ad.Status),
		}
	}

	if action == ActionApprove {
		return s.approve(ctx, ad, comment)
	}
	return s.reject(ctx, ad, comment)
}

func (s *ModerationService) approve(ctx context.Context, ad *models.Ad, comment string) (*models.Ad, error) {
	err := s.store.SetAdModerated(ctx, ad.ID, models.AdStatusApproved, comment)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return nil, &PreconditionError{Reason: "ad was moderated concurrently"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve ad: %w", err)
	}

	ad.Status = models.AdStatusApproved
	ad.ModerationNote = comment
	util.AdsApprovedTotal.Inc()
	s.logger.Info("Ad approved", zap.Int64("ad_id", ad.ID))

	// The approval stands whether or not the notification lands.
	subject, htmlBody, textBody := mailer.ApprovedEmail(ad, comment)
	if err := s.mailer.Send(ctx, ad.Email, subject, htmlBody, textBody); err != nil {
		util.NotificationFailuresTotal.WithLabelValues("approved").Inc()
		s.logger.Error("Failed to send approval email",
			zap.Int64("ad_id", ad.ID),
			zap.Error(err))
	}

	event := &models.AdApprovedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAdApproved,
			Timestamp: time.Now(),
		},
		AdID:      ad.ID,
		Locations: ad.Locations,
	}
	if err := s.publisher.PublishAdApproved(ctx, event); err != nil {
		s.logger.Error("Failed to publish AdApproved event", zap.Error(err))
	}

	return ad, nil
}

func (s *ModerationService) reject(ctx context.Context, ad *models.Ad, comment string) (*models.Ad, error) {
	// Refund first. If the refund call fails the record must stay pending;
	// an unrefunded rejection is worse than a retried one.
	refund, err := s.gateway.Refund(ctx, ad.PaymentReference, "moderation_rejected")
	if err != nil {
		util.RefundsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Refund failed, ad stays pending",
			zap.Int64("ad_id", ad.ID),
			zap.String("payment_reference", ad.PaymentReference),
			zap.Error(err))
		return nil, &GatewayError{Op: "refund", Err: err}
	}

	util.RefundsTotal.WithLabelValues("issued").Inc()
	s.logger.Info("Refund issued",
		zap.Int64("ad_id", ad.ID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", ad.Total))

	err = s.store.SetAdModerated(ctx, ad.ID, models.AdStatusRejected, comment)
	if errors.Is(err, store.ErrPreconditionFailed) {
		// A concurrent moderation won between our refund and this update.
		// The refund has been issued against a record somebody else
		// decided; surface it loudly for operator reconciliation.
		s.logger.Error("Refund issued but ad was moderated concurrently",
			zap.Int64("ad_id", ad.ID),
			zap.String("refund_id", refund.ID))
		return nil, &PreconditionError{Reason: "ad was moderated concurrently"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject ad: %w", err)
	}

	ad.Status = models.AdStatusRejected
	ad.ModerationNote = comment
	util.AdsRejectedTotal.Inc()
	s.logger.Info("Ad rejected", zap.Int64("ad_id", ad.ID))

	subject, htmlBody, textBody := mailer.RejectedEmail(ad, comment)
	if err := s.mailer.Send(ctx, ad.Email, subject, htmlBody, textBody); err != nil {
		util.NotificationFailuresTotal.WithLabelValues("rejected").Inc()
		s.logger.Error("Failed to send rejection email",
			zap.Int64("ad_id", ad.ID),
			zap.Error(err))
	}

	event := &models.AdRejectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAdRejected,
			Timestamp: time.Now(),
		},
		AdID:         ad.ID,
		RefundAmount: ad.Total,
		Reason:       comment,
		Locations:    ad.Locations,
	}
	if err := s.publisher.PublishAdRejected(ctx, event); err != nil {
		s.logger.Error("Failed to publish AdRejected event", zap.Error(err))
	}

	return ad, nil
}
