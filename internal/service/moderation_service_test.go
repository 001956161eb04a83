package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classifieds-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModerationFixture() (*ModerationService, *fakeStore, *fakeGateway, *fakeMailer, *fakePublisher, *fakeLocker) {
	st := newFakeStore()
	gw := &fakeGateway{}
	m := &fakeMailer{}
	pub := &fakePublisher{}
	locker := newFakeLocker()
	svc := NewModerationService(st, gw, m, pub, locker, 30*time.Second)
	return svc, st, gw, m, pub, locker
}

func seedPendingAd(t *testing.T, st *fakeStore) *models.Ad {
	t.Helper()
	ad := &models.Ad{
		Category:         "FOR SALE",
		Content:          "Free firewood",
		Email:            "a@b.com",
		Subtotal:         1000,
		Tax:              63,
		Total:            1063,
		Status:           models.AdStatusPendingPayment,
		PaymentReference: "pi_1",
		Locations: []models.Location{
			{County: "Montgomery", State: "Maryland"},
			{County: "Frederick", State: "Maryland"},
		},
	}
	require.NoError(t, st.InsertAd(context.Background(), ad))
	require.NoError(t, st.MarkAdPaid(context.Background(), ad.ID, "pi_1", 1063))
	return ad
}

func TestModerateApprove(t *testing.T) {
	svc, st, gw, m, pub, _ := newModerationFixture()
	ad := seedPendingAd(t, st)

	got, err := svc.Moderate(context.Background(), ad.ID, ActionApprove, "looks fine")
	require.NoError(t, err)

	assert.Equal(t, models.AdStatusApproved, got.Status)
	assert.Equal(t, models.AdStatusApproved, st.mustGet(ad.ID).Status)
	assert.Equal(t, "looks fine", st.mustGet(ad.ID).ModerationNote)

	assert.Empty(t, gw.refunds, "approval never touches the gateway")
	assert.Equal(t, 1, m.count())
	assert.Equal(t, []string{models.EventTypeAdApproved}, pub.events)
}

func TestModerateRejectRefundsBeforeTransition(t *testing.T) {
	svc, st, gw, m, pub, _ := newModerationFixture()
	ad := seedPendingAd(t, st)

	got, err := svc.Moderate(context.Background(), ad.ID, ActionReject, "spam")
	require.NoError(t, err)

	assert.Equal(t, models.AdStatusRejected, got.Status)
	assert.Equal(t, "spam", st.mustGet(ad.ID).ModerationNote)
	assert.Equal(t, []string{"pi_1"}, gw.refunds)
	assert.Equal(t, 1, m.count())
	assert.Equal(t, []string{models.EventTypeAdRejected}, pub.events)
}

func TestModerateRejectRefundFailureKeepsPending(t *testing.T) {
	svc, st, gw, m, _, _ := newModerationFixture()
	ad := seedPendingAd(t, st)
	gw.refundErr = errors.New("gateway timeout")

	_, err := svc.Moderate(context.Background(), ad.ID, ActionReject, "spam")

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)

	// No unrefunded rejection: the record stays pending for a retry.
	assert.Equal(t, models.AdStatusPending, st.mustGet(ad.ID).Status)
	assert.Zero(t, m.count())
}

func TestModerateRejectRetryAfterRefundFailure(t *testing.T) {
	svc, st, gw, _, _, _ := newModerationFixture()
	ad := seedPendingAd(t, st)

	gw.refundErr = errors.New("gateway timeout")
	_, err := svc.Moderate(context.Background(), ad.ID, ActionReject, "spam")
	require.Error(t, err)

	gw.refundErr = nil
	got, err := svc.Moderate(context.Background(), ad.ID, ActionReject, "spam")
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusRejected, got.Status)
}

func TestModerateNonPendingIsPreconditionError(t *testing.T) {
	svc, st, gw, _, _, _ := newModerationFixture()
	ad := seedPendingAd(t, st)

	_, err := svc.Moderate(context.Background(), ad.ID, ActionApprove, "")
	require.NoError(t, err)

	for _, action := range []string{ActionApprove, ActionReject} {
		_, err := svc.Moderate(context.Background(), ad.ID, action, "")
		var preconditionErr *PreconditionError
		require.ErrorAs(t, err, &preconditionErr, "action %s on approved ad", action)
	}

	assert.Equal(t, models.AdStatusApproved, st.mustGet(ad.ID).Status)
	assert.Empty(t, gw.refunds, "no refund issued against a decided ad")
}

func TestModeratePendingPaymentIsPreconditionError(t *testing.T) {
	svc, st, _, _, _, _ := newModerationFixture()

	ad := &models.Ad{
		Category:  "FREE",
		Content:   "Moving boxes",
		Email:     "a@b.com",
		Status:    models.AdStatusPendingPayment,
		Locations: []models.Location{{County: "Howard", State: "Maryland"}},
	}
	require.NoError(t, st.InsertAd(context.Background(), ad))

	_, err := svc.Moderate(context.Background(), ad.ID, ActionApprove, "")

	var preconditionErr *PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, models.AdStatusPendingPayment, st.mustGet(ad.ID).Status)
}

func TestModerateUnknownAd(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()

	_, err := svc.Moderate(context.Background(), 404, ActionApprove, "")

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestModerateBadAction(t *testing.T) {
	svc, st, _, _, _, _ := newModerationFixture()
	ad := seedPendingAd(t, st)

	_, err := svc.Moderate(context.Background(), ad.ID, "escalate", "")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "action")
	assert.Equal(t, models.AdStatusPending, st.mustGet(ad.ID).Status)
}

func TestModerateLockContention(t *testing.T) {
	svc, st, gw, _, _, locker := newModerationFixture()
	ad := seedPendingAd(t, st)

	// Another moderator holds the lock.
	locked, err := locker.AcquireModerationLock(context.Background(), ad.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	_, err = svc.Moderate(context.Background(), ad.ID, ActionReject, "spam")

	var preconditionErr *PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, models.AdStatusPending, st.mustGet(ad.ID).Status)
	assert.Empty(t, gw.refunds, "no refund while another moderation is in flight")
}

func TestModerateApproveNotificationFailureStands(t *testing.T) {
	svc, st, _, m, _, _ := newModerationFixture()
	ad := seedPendingAd(t, st)
	m.sendErr = errors.New("mail API down")

	got, err := svc.Moderate(context.Background(), ad.ID, ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusApproved, got.Status)
}

func TestListPending(t *testing.T) {
	svc, st, _, _, _, _ := newModerationFixture()
	seedPendingAd(t, st)
	seedPendingAd(t, st)

	ads, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, ads, 2)
}
