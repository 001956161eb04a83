package service

import (
	"context"
	"time"

	"classifieds-service/internal/models"
)

// AdStore is the durable record store for ads. Status mutations are
// conditional updates keyed on the expected prior status; the store
// returns store.ErrPreconditionFailed when the guard does not hold and
// store.ErrNotFound for unknown ids.
type AdStore interface {
	InsertAd(ctx context.Context, ad *models.Ad) error
	GetAdByID(ctx context.Context, id int64) (*models.Ad, error)
	MarkAdPaid(ctx context.Context, adID int64, paymentReference string, amountTotal int64) error
	SetAdModerated(ctx context.Context, adID int64, status, comment string) error
	ListAdsByStatus(ctx context.Context, status string) ([]models.Ad, error)
	ListApprovedByLocation(ctx context.Context, loc models.Location) ([]models.Ad, error)
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Publisher emits ad lifecycle events. Publishing is best-effort; failures
// are logged by the caller and never fail the request.
type Publisher interface {
	PublishAdSubmitted(ctx context.Context, event *models.AdSubmittedEvent) error
	PublishAdPaymentConfirmed(ctx context.Context, event *models.AdPaymentConfirmedEvent) error
	PublishAdApproved(ctx context.Context, event *models.AdApprovedEvent) error
	PublishAdRejected(ctx context.Context, event *models.AdRejectedEvent) error
}

// Locker provides the per-ad moderation lock.
type Locker interface {
	AcquireModerationLock(ctx context.Context, adID int64, ttl time.Duration) (bool, error)
	ReleaseModerationLock(ctx context.Context, adID int64) error
}

// ListingCache caches the public approved-ads read path per location.
type ListingCache interface {
	GetCachedListings(ctx context.Context, loc models.Location) ([]models.Ad, bool, error)
	SetCachedListings(ctx context.Context, loc models.Location, ads []models.Ad, ttl time.Duration) error
}
