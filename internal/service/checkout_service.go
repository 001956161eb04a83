package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"classifieds-service/internal/locations"
	"classifieds-service/internal/models"
	"classifieds-service/internal/payment"
	"classifieds-service/internal/pricing"
	"classifieds-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxContentLength is the character limit for ad content.
const MaxContentLength = 140

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CheckoutService turns a user-submitted draft into a durable
// pending_payment record and a hosted checkout redirect.
type CheckoutService struct {
	store      AdStore
	gateway    payment.Gateway
	publisher  Publisher
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(store AdStore, gateway payment.Gateway, publisher Publisher, successURL, cancelURL string) *CheckoutService {
	return &CheckoutService{
		store:      store,
		gateway:    gateway,
		publisher:  publisher,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     util.GetLogger(),
	}
}

// AdDraft is a user-submitted ad before payment.
type AdDraft struct {
	Locations      []models.Location `json:"locations" binding:"required"`
	Category       string            `json:"category" binding:"required"`
	Content        string            `json:"content" binding:"required"`
	Email          string            `json:"email" binding:"required"`
	Phone          string            `json:"phone,omitempty"`
	Address        string            `json:"address,omitempty"`
	AttachmentURL  string            `json:"attachment_url,omitempty"`
	AttachmentKind string            `json:"attachment_kind,omitempty"`
}

// CheckoutResult is returned to the caller so it can redirect the user to
// the hosted checkout page.
type CheckoutResult struct {
	AdID      int64           `json:"ad_id"`
	SessionID string          `json:"session_id"`
	URL       string          `json:"url"`
	Pricing   pricing.Pricing `json:"pricing"`
}

// validateDraft collects every field problem into one error map. Purely
// local; no side effects on failure.
func validateDraft(draft *AdDraft) map[string]string {
	problems := make(map[string]string)

	if len(draft.Locations) == 0 {
		problems["locations"] = "at least one location is required"
	} else {
		for _, loc := range draft.Locations {
			if !locations.IsValid(loc.State, loc.County) {
				problems["locations"] = fmt.Sprintf("unknown location: %s, %s", loc.County, loc.State)
				break
			}
		}
	}

	if !models.IsValidCategory(draft.Category) {
		problems["category"] = "unknown category"
	}

	content := strings.TrimSpace(draft.Content)
	if content == "" {
		problems["content"] = "ad content is required"
	} else if len([]rune(draft.Content)) > MaxContentLength {
		problems["content"] = fmt.Sprintf("content must be %d characters or less", MaxContentLength)
	}

	if strings.TrimSpace(draft.Email) == "" {
		problems["email"] = "email address is required"
	} else if !emailPattern.MatchString(draft.Email) {
		problems["email"] = "invalid email address"
	}

	if draft.AttachmentURL != "" {
		if draft.AttachmentKind != models.AttachmentKindImage && draft.AttachmentKind != models.AttachmentKindDocument {
			problems["attachment_kind"] = "attachment kind must be image or document"
		}
	}

	return problems
}

// Checkout validates the draft, persists a pending_payment record, and
// requests a hosted checkout session carrying the record id as its only
// metadata. The record is persisted before the gateway call so a payment
// can never confirm without a record to apply it to.
func (s *CheckoutService) Checkout(ctx context.Context, draft *AdDraft) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if problems := validateDraft(draft); len(problems) > 0 {
		util.CheckoutValidationFailures.Inc()
		return nil, &ValidationError{Fields: problems}
	}

	price := pricing.Calculate(len(draft.Locations))

	ad := &models.Ad{
		Category:       draft.Category,
		Content:        strings.TrimSpace(draft.Content),
		Email:          draft.Email,
		Phone:          draft.Phone,
		Address:        draft.Address,
		AttachmentURL:  draft.AttachmentURL,
		AttachmentKind: draft.AttachmentKind,
		Subtotal:       price.Subtotal,
		Tax:            price.Tax,
		Total:          price.Total,
		Status:         models.AdStatusPendingPayment,
		Locations:      draft.Locations,
	}

	if err := s.store.InsertAd(ctx, ad); err != nil {
		return nil, fmt.Errorf("failed to persist ad: %w", err)
	}

	util.AdsSubmittedTotal.Inc()
	s.logger.Info("Ad draft persisted",
		zap.Int64("ad_id", ad.ID),
		zap.Int("locations", len(ad.Locations)),
		zap.Int64("total", ad.Total))

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionParams{
		LineItems:     payment.BuildLineItems(ad.Category, ad.Locations, pricing.PricePerCounty),
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		CustomerEmail: ad.Email,
		Metadata:      map[string]string{"ad_id": strconv.FormatInt(ad.ID, 10)},
	})
	if err != nil {
		// The pending_payment row stays behind as an abandoned checkout.
		// It never progresses and gets reconciled out of band; rolling it
		// back here could itself fail and hide the original error.
		util.CheckoutSessionsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Checkout session creation failed",
			zap.Int64("ad_id", ad.ID),
			zap.Error(err))
		return nil, &GatewayError{Op: "create checkout session", Err: err}
	}

	util.CheckoutSessionsTotal.WithLabelValues("created").Inc()

	event := &models.AdSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAdSubmitted,
			Timestamp: time.Now(),
		},
		AdID:      ad.ID,
		Category:  ad.Category,
		Total:     ad.Total,
		Locations: ad.Locations,
	}
	if err := s.publisher.PublishAdSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish AdSubmitted event", zap.Error(err))
	}

	return &CheckoutResult{
		AdID:      ad.ID,
		SessionID: session.ID,
		URL:       session.URL,
		Pricing:   price,
	}, nil
}
