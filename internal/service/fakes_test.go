package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classifieds-service/internal/models"
	"classifieds-service/internal/payment"
	"classifieds-service/internal/store"
)

// fakeStore is an in-memory AdStore with the same conditional-update
// semantics as the Postgres store.
type fakeStore struct {
	mu        sync.Mutex
	ads       map[int64]*models.Ad
	processed map[string]bool
	nextID    int64

	insertErr   error
	markPaidErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ads:       make(map[int64]*models.Ad),
		processed: make(map[string]bool),
	}
}

func (f *fakeStore) InsertAd(ctx context.Context, ad *models.Ad) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}

	f.nextID++
	ad.ID = f.nextID
	ad.CreatedAt = time.Now()
	ad.UpdatedAt = ad.CreatedAt

	clone := *ad
	clone.Locations = append([]models.Location(nil), ad.Locations...)
	f.ads[ad.ID] = &clone
	return nil
}

func (f *fakeStore) GetAdByID(ctx context.Context, id int64) (*models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ad, ok := f.ads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *ad
	clone.Locations = append([]models.Location(nil), ad.Locations...)
	return &clone, nil
}

func (f *fakeStore) MarkAdPaid(ctx context.Context, adID int64, paymentReference string, amountTotal int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markPaidErr != nil {
		return f.markPaidErr
	}

	ad, ok := f.ads[adID]
	if !ok {
		return store.ErrNotFound
	}
	if ad.Status != models.AdStatusPendingPayment {
		return store.ErrPreconditionFailed
	}
	ad.Status = models.AdStatusPending
	ad.PaymentReference = paymentReference
	ad.Total = amountTotal
	ad.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) SetAdModerated(ctx context.Context, adID int64, status, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ad, ok := f.ads[adID]
	if !ok {
		return store.ErrNotFound
	}
	if ad.Status != models.AdStatusPending {
		return store.ErrPreconditionFailed
	}
	ad.Status = status
	ad.ModerationNote = comment
	ad.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) ListAdsByStatus(ctx context.Context, status string) ([]models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Ad
	for _, ad := range f.ads {
		if ad.Status == status {
			out = append(out, *ad)
		}
	}
	return out, nil
}

func (f *fakeStore) ListApprovedByLocation(ctx context.Context, loc models.Location) ([]models.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Ad
	for _, ad := range f.ads {
		if ad.Status != models.AdStatusApproved {
			continue
		}
		for _, adLoc := range ad.Locations {
			if adLoc == loc {
				out = append(out, *ad)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processed[eventID], nil
}

func (f *fakeStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[eventID] = true
	return nil
}

func (f *fakeStore) mustGet(id int64) *models.Ad {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ads[id]
}

// fakeGateway records gateway calls and can be told to fail them.
type fakeGateway struct {
	mu       sync.Mutex
	sessions []payment.SessionParams
	refunds  []string

	sessionErr error
	refundErr  error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, params payment.SessionParams) (*payment.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions = append(f.sessions, params)
	id := fmt.Sprintf("cs_%d", len(f.sessions))
	return &payment.CheckoutSession{
		ID:  id,
		URL: "https://checkout.localhost/" + id,
	}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, paymentReference, reason string) (*payment.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refunds = append(f.refunds, paymentReference)
	return &payment.Refund{
		ID:     fmt.Sprintf("re_%d", len(f.refunds)),
		Status: "succeeded",
	}, nil
}

// fakeMailer records sent emails and can be told to fail.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentEmail
	sendErr error
}

type sentEmail struct {
	to      string
	subject string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject})
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakePublisher records published lifecycle events by type.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) record(eventType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

func (f *fakePublisher) PublishAdSubmitted(ctx context.Context, event *models.AdSubmittedEvent) error {
	f.record(event.EventType)
	return nil
}

func (f *fakePublisher) PublishAdPaymentConfirmed(ctx context.Context, event *models.AdPaymentConfirmedEvent) error {
	f.record(event.EventType)
	return nil
}

func (f *fakePublisher) PublishAdApproved(ctx context.Context, event *models.AdApprovedEvent) error {
	f.record(event.EventType)
	return nil
}

func (f *fakePublisher) PublishAdRejected(ctx context.Context, event *models.AdRejectedEvent) error {
	f.record(event.EventType)
	return nil
}

// fakeLocker is an in-process Locker.
type fakeLocker struct {
	mu     sync.Mutex
	held   map[int64]bool
	denied bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[int64]bool)}
}

func (f *fakeLocker) AcquireModerationLock(ctx context.Context, adID int64, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.denied || f.held[adID] {
		return false, nil
	}
	f.held[adID] = true
	return true, nil
}

func (f *fakeLocker) ReleaseModerationLock(ctx context.Context, adID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, adID)
	return nil
}
