package models

import "time"

// Event types
const (
	EventTypeAdSubmitted        = "AD_SUBMITTED"
	EventTypeAdPaymentConfirmed = "AD_PAYMENT_CONFIRMED"
	EventTypeAdApproved         = "AD_APPROVED"
	EventTypeAdRejected         = "AD_REJECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AdSubmittedEvent published when a draft is persisted and a checkout
// session has been created for it.
type AdSubmittedEvent struct {
	BaseEvent
	AdID      int64      `json:"ad_id"`
	Category  string     `json:"category"`
	Total     int64      `json:"total"`
	Locations []Location `json:"locations"`
}

// AdPaymentConfirmedEvent published when the payment gateway confirms a
// completed checkout and the ad enters the moderation queue.
type AdPaymentConfirmedEvent struct {
	BaseEvent
	AdID             int64  `json:"ad_id"`
	PaymentReference string `json:"payment_reference"`
	AmountTotal      int64  `json:"amount_total"`
}

// AdApprovedEvent published when a moderator approves an ad.
type AdApprovedEvent struct {
	BaseEvent
	AdID      int64      `json:"ad_id"`
	Locations []Location `json:"locations"`
}

// AdRejectedEvent published when a moderator rejects an ad (refund issued).
type AdRejectedEvent struct {
	BaseEvent
	AdID         int64      `json:"ad_id"`
	RefundAmount int64      `json:"refund_amount"`
	Reason       string     `json:"reason,omitempty"`
	Locations    []Location `json:"locations"`
}
