package models

import "time"

// Ad statuses. An ad moves through exactly one edge at a time:
// pending_payment -> pending -> approved | rejected.
// pending_payment may also terminate by silent abandonment (the checkout
// session expires and the record never progresses).
const (
	AdStatusPendingPayment = "pending_payment"
	AdStatusPending        = "pending"
	AdStatusApproved       = "approved"
	AdStatusRejected       = "rejected"
)

// Attachment kinds
const (
	AttachmentKindImage    = "image"
	AttachmentKindDocument = "document"
)

// AdCategories is the fixed tag set of the posting form.
var AdCategories = []string{
	"FOR SALE",
	"SERVICE",
	"WANTED",
	"COMMUNITY",
	"FARM",
	"LOST",
	"HELP WANTED",
	"FREE",
	"EVENT",
	"OTHER",
}

// IsValidCategory reports whether cat is one of the fixed category tags.
func IsValidCategory(cat string) bool {
	for _, c := range AdCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Location is one targeted (county, state) pair. Each selected county is
// billed separately.
type Location struct {
	County string `db:"county" json:"county"`
	State  string `db:"state" json:"state"`
}

// Ad represents one classified-ad submission through its lifecycle.
// All amounts are integer cents.
type Ad struct {
	ID               int64      `db:"id" json:"id"`
	Category         string     `db:"category" json:"category"`
	Content          string     `db:"content" json:"content"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone,omitempty"`
	Address          string     `db:"address" json:"address,omitempty"`
	AttachmentURL    string     `db:"attachment_url" json:"attachment_url,omitempty"`
	AttachmentKind   string     `db:"attachment_kind" json:"attachment_kind,omitempty"`
	Subtotal         int64      `db:"subtotal" json:"subtotal"`
	Tax              int64      `db:"tax" json:"tax"`
	Total            int64      `db:"total" json:"total"`
	Status           string     `db:"status" json:"status"`
	PaymentReference string     `db:"payment_reference" json:"payment_reference,omitempty"`
	ModerationNote   string     `db:"moderation_note" json:"moderation_note,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	Locations        []Location `db:"-" json:"locations"`
}

// ProcessedEvent records a handled webhook event for idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
