package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/supabase"
)

// PromoCode unlocks the short trial window instead of the standard one.
const PromoCode = "LAUNCHWEEK"

const (
	premiumPeriod = 30 * 24 * time.Hour
	promoPeriod   = 7 * 24 * time.Hour
)

// Routes showing subscription state.
var subscriptionPaths = []string{"/dashboard", "/dashboard/billing"}

type SubscriptionService struct {
	store  ProfileStore
	pages  Revalidator
	now    func() time.Time
	logger zerolog.Logger
}

func NewSubscriptionService(store ProfileStore, pages Revalidator, logger zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:  store,
		pages:  pages,
		now:    time.Now,
		logger: logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

// WithClock replaces the time source.
func (s *SubscriptionService) WithClock(now func() time.Time) *SubscriptionService {
	s.now = now
	return s
}

// PremiumPeriod returns how long an upgrade with promo lasts. The promo code
// is compared trimmed and case-insensitively.
func PremiumPeriod(promo string) time.Duration {
	if strings.EqualFold(strings.TrimSpace(promo), PromoCode) {
		return promoPeriod
	}
	return premiumPeriod
}

func (s *SubscriptionService) UpgradeToPremium(ctx context.Context, userID uuid.UUID, promo string) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	started := s.now().UTC()
	expires := started.Add(PremiumPeriod(promo))

	if err := s.store.UpdateSubscription(ctx, userID, models.TierPremium, started, expires); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to upgrade subscription")
		return nil, ErrPersistence
	}
	s.revalidate(ctx)

	s.logger.Info().
		Str("user_id", userID.String()).
		Time("expires_at", expires).
		Bool("promo", PremiumPeriod(promo) == promoPeriod).
		Msg("Upgraded to premium")

	return &models.Profile{
		ID:                    userID,
		SubscriptionTier:      models.TierPremium,
		SubscriptionStartedAt: nullTime(started),
		SubscriptionExpiresAt: nullTime(expires),
	}, nil
}

// DowngradeToFreemium ends any premium window immediately. The start of the
// last premium window stays on the profile.
func (s *SubscriptionService) DowngradeToFreemium(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	now := s.now().UTC()
	if err := s.store.EndSubscription(ctx, userID, now); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to downgrade subscription")
		return nil, ErrPersistence
	}
	s.revalidate(ctx)

	profile := &models.Profile{
		ID:                    userID,
		SubscriptionTier:      models.TierFreemium,
		SubscriptionExpiresAt: nullTime(now),
	}
	if stored, err := s.store.GetProfile(ctx, userID); err == nil {
		profile.SubscriptionStartedAt = stored.SubscriptionStartedAt
	}
	return profile, nil
}

// Status returns the user's profile. Users without a profile row are
// freemium.
func (s *SubscriptionService) Status(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, supabase.ErrNotFound) {
		return models.FreemiumProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return p, nil
}

func (s *SubscriptionService) IsPremium(ctx context.Context, userID uuid.UUID) (bool, error) {
	p, err := s.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return p.IsPremium(s.now()), nil
}

// RequirePremium returns ErrPremiumRequired unless the user has an active
// premium window.
func (s *SubscriptionService) RequirePremium(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPremiumRequired
	}
	return nil
}

func (s *SubscriptionService) Now() time.Time {
	return s.now()
}

func (s *SubscriptionService) revalidate(ctx context.Context) {
	if err := s.pages.Revalidate(ctx, subscriptionPaths...); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revalidate subscription pages")
	}
}
