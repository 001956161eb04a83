package store

import (
	"context"
	"database/sql"
	"fmt"

	"classifieds-service/internal/models"
)

// InsertAd persists a new ad and its target locations in one transaction.
// The ad's ID and timestamps are filled in from the database.
func (s *Store) InsertAd(ctx context.Context, ad *models.Ad) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ads (category, content, email, phone, address,
			attachment_url, attachment_kind, subtotal, tax, total, status,
			payment_reference, moderation_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	row := tx.QueryRowxContext(ctx, query,
		ad.Category, ad.Content, ad.Email, ad.Phone, ad.Address,
		ad.AttachmentURL, ad.AttachmentKind, ad.Subtotal, ad.Tax, ad.Total,
		ad.Status, ad.PaymentReference, ad.ModerationNote)
	if err := row.Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert ad: %w", err)
	}

	for i, loc := range ad.Locations {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ad_locations (ad_id, position, county, state) VALUES ($1, $2, $3, $4)",
			ad.ID, i, loc.County, loc.State)
		if err != nil {
			return fmt.Errorf("failed to insert ad location: %w", err)
		}
	}

	return tx.Commit()
}

// GetAdByID retrieves an ad with its locations.
func (s *Store) GetAdByID(ctx context.Context, id int64) (*models.Ad, error) {
	var ad models.Ad
	err := s.db.GetContext(ctx, &ad, "SELECT * FROM ads WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadLocations(ctx, &ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

// MarkAdPaid transitions an ad from pending_payment to pending, recording
// the gateway's payment reference and confirmed total. The update is
// conditional on the prior status so a redelivered confirmation cannot
// apply the transition twice.
func (s *Store) MarkAdPaid(ctx context.Context, adID int64, paymentReference string, amountTotal int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ads
		SET status = $1, payment_reference = $2, total = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		models.AdStatusPending, paymentReference, amountTotal,
		adID, models.AdStatusPendingPayment)
	if err != nil {
		return err
	}
	return s.checkConditional(ctx, res, adID)
}

// SetAdModerated transitions an ad from pending to approved or rejected,
// storing the moderator's comment. Conditional on the prior status so two
// racing moderation calls cannot both win.
func (s *Store) SetAdModerated(ctx context.Context, adID int64, status, comment string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ads
		SET status = $1, moderation_note = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		status, comment, adID, models.AdStatusPending)
	if err != nil {
		return err
	}
	return s.checkConditional(ctx, res, adID)
}

// checkConditional maps a zero-row conditional update to ErrNotFound or
// ErrPreconditionFailed.
func (s *Store) checkConditional(ctx context.Context, res sql.Result, adID int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM ads WHERE id = $1)", adID); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrPreconditionFailed
}

// ListAdsByStatus retrieves ads in a given status, newest first.
func (s *Store) ListAdsByStatus(ctx context.Context, status string) ([]models.Ad, error) {
	var ads []models.Ad
	err := s.db.SelectContext(ctx, &ads,
		"SELECT * FROM ads WHERE status = $1 ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}

	for i := range ads {
		if err := s.loadLocations(ctx, &ads[i]); err != nil {
			return nil, err
		}
	}
	return ads, nil
}

// ListApprovedByLocation is the public read path: approved ads targeting
// the given (state, county), newest first.
func (s *Store) ListApprovedByLocation(ctx context.Context, loc models.Location) ([]models.Ad, error) {
	var ads []models.Ad
	err := s.db.SelectContext(ctx, &ads, `
		SELECT a.* FROM ads a
		JOIN ad_locations l ON l.ad_id = a.id
		WHERE a.status = $1 AND l.state = $2 AND l.county = $3
		ORDER BY a.created_at DESC`,
		models.AdStatusApproved, loc.State, loc.County)
	if err != nil {
		return nil, err
	}

	for i := range ads {
		if err := s.loadLocations(ctx, &ads[i]); err != nil {
			return nil, err
		}
	}
	return ads, nil
}

func (s *Store) loadLocations(ctx context.Context, ad *models.Ad) error {
	return s.db.SelectContext(ctx, &ad.Locations,
		"SELECT county, state FROM ad_locations WHERE ad_id = $1 ORDER BY position", ad.ID)
}
