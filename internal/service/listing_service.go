package service

import (
	"context"
	"time"

	"classifieds-service/internal/locations"
	"classifieds-service/internal/models"
	"classifieds-service/internal/util"

	"go.uber.org/zap"
)

// ListingService is the public read path: approved ads for one location,
// served through a per-location cache.
type ListingService struct {
	store    AdStore
	cache    ListingCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewListingService creates a new listing service. cache may be nil, in
// which case every read goes to the store.
func NewListingService(adStore AdStore, cache ListingCache, cacheTTL time.Duration) *ListingService {
	return &ListingService{
		store:    adStore,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListApproved returns approved ads targeting the given location.
func (s *ListingService) ListApproved(ctx context.Context, state, county string) ([]models.Ad, error) {
	ctx, span := util.StartSpan(ctx, "ListingService.ListApproved")
	defer span.End()

	if !locations.IsValid(state, county) {
		return nil, &ValidationError{Fields: map[string]string{
			"location": "unknown state/county pair",
		}}
	}

	loc := models.Location{County: county, State: state}

	if s.cache != nil {
		ads, hit, err := s.cache.GetCachedListings(ctx, loc)
		if err != nil {
			s.logger.Warn("Listing cache read failed, falling back to store",
				zap.String("state", state),
				zap.String("county", county),
				zap.Error(err))
		} else if hit {
			util.ListingCacheTotal.WithLabelValues("hit").Inc()
			return ads, nil
		}
		util.ListingCacheTotal.WithLabelValues("miss").Inc()
	}

	ads, err := s.store.ListApprovedByLocation(ctx, loc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCachedListings(ctx, loc, ads, s.cacheTTL); err != nil {
			s.logger.Warn("Listing cache write failed",
				zap.String("state", state),
				zap.String("county", county),
				zap.Error(err))
		}
	}

	return ads, nil
}
