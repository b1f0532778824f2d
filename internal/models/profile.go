package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFreemium SubscriptionTier = "freemium"
	TierPremium  SubscriptionTier = "premium"
)

type Profile struct {
	ID                    uuid.UUID
	SubscriptionTier      SubscriptionTier
	SubscriptionStartedAt sql.NullTime
	SubscriptionExpiresAt sql.NullTime
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsPremium reports whether the profile has an unexpired premium grant at now.
func (p *Profile) IsPremium(now time.Time) bool {
	if p == nil || p.SubscriptionTier != TierPremium {
		return false
	}
	return p.SubscriptionExpiresAt.Valid && p.SubscriptionExpiresAt.Time.After(now)
}

// FreemiumProfile is what a user without a profile row is treated as.
func FreemiumProfile(userID uuid.UUID) *Profile {
	return &Profile{ID: userID, SubscriptionTier: TierFreemium}
}
