package mailer

import (
	"fmt"
	"strings"

	"classifieds-service/internal/models"
)

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func locationList(locs []models.Location) string {
	parts := make([]string, len(locs))
	for i, loc := range locs {
		parts[i] = fmt.Sprintf("%s, %s", loc.County, loc.State)
	}
	return strings.Join(parts, "; ")
}

// ReceiptEmail builds the payment receipt sent once the gateway confirms a
// completed checkout. amountTotal is the gateway-confirmed total in cents.
func ReceiptEmail(ad *models.Ad, amountTotal int64) (subject, htmlBody, textBody string) {
	subject = "Receipt: Ad Submission"
	amount := formatCents(amountTotal)
	locs := locationList(ad.Locations)

	htmlBody = fmt.Sprintf(`<h1>Order Confirmation &amp; Receipt</h1>
<p>Thank you for your order. We have received your payment and ad submission.</p>
<p><strong>Total Paid:</strong> %s</p>
<p><strong>Category:</strong> %s<br>
<strong>Ad Content:</strong> %s<br>
<strong>Locations:</strong> %s</p>
<p>Your post is currently under review. Please allow up to 2 hours for your
post to go live.</p>
<p><strong>Refund Policy:</strong> If your post is rejected during moderation,
you will automatically receive a 100%% refund to your original payment
method.</p>`, amount, ad.Category, ad.Content, locs)

	textBody = fmt.Sprintf(`Order Confirmation & Receipt

Thank you for your order. We have received your payment and ad submission.

Total Paid: %s
Category: %s
Ad Content: %s
Locations: %s

Your post is currently under review. Please allow up to 2 hours for your
post to go live.

Refund Policy: If your post is rejected during moderation, you will
automatically receive a 100%% refund to your original payment method.`,
		amount, ad.Category, ad.Content, locs)

	return subject, htmlBody, textBody
}

// ApprovedEmail builds the "your ad is live" notification.
func ApprovedEmail(ad *models.Ad, comment string) (subject, htmlBody, textBody string) {
	subject = "Your Ad is Live!"

	note := ""
	if comment != "" {
		note = fmt.Sprintf("<p><strong>Moderator Note:</strong> %s</p>", comment)
	}
	htmlBody = fmt.Sprintf(`<h1>Your Ad has been Approved!</h1>
<p>Great news! Your ad has been approved and is now live.</p>
%s<p>View it by selecting your location on the site.</p>`, note)

	textNote := ""
	if comment != "" {
		textNote = fmt.Sprintf("Moderator Note: %s\n\n", comment)
	}
	textBody = fmt.Sprintf(`Your Ad has been Approved!

Great news! Your ad has been approved and is now live.

%sView it by selecting your location on the site.`, textNote)

	return subject, htmlBody, textBody
}

// RejectedEmail builds the rejection notification. Sent only after the
// refund has been accepted by the payment gateway.
func RejectedEmail(ad *models.Ad, comment string) (subject, htmlBody, textBody string) {
	subject = "Update regarding your Ad"

	reason := comment
	if reason == "" {
		reason = "Violation of community guidelines"
	}

	htmlBody = fmt.Sprintf(`<h1>Ad Submission Update</h1>
<p>We reviewed your ad submission and unfortunately it could not be approved
at this time.</p>
<p><strong>Reason:</strong> %s</p>
<p><strong>Refund Status:</strong> A full refund of %s has been initiated to
your original payment method. Please allow 5-10 business days for it to
appear.</p>`, reason, formatCents(ad.Total))

	textBody = fmt.Sprintf(`Ad Submission Update

We reviewed your ad submission and unfortunately it could not be approved at
this time.

Reason: %s

Refund Status: A full refund of %s has been initiated to your original
payment method. Please allow 5-10 business days for it to appear.`,
		reason, formatCents(ad.Total))

	return subject, htmlBody, textBody
}
