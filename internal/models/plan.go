package models

import "time"

// PlanTier identifies a subscription tier.
type PlanTier string

const (
	TierFree     PlanTier = "free"
	TierSilver   PlanTier = "silver"
	TierGold     PlanTier = "gold"
	TierPlatinum PlanTier = "platinum"
)

// UnlimitedQuota marks a plan without a usage cap.
const UnlimitedQuota = -1

// PlanState is the current entitlement of the user. The zero value is the
// free, inactive tier. Quota counts remaining paid analyses; it is
// meaningful only when Activated is true and the tier is not unlimited.
type PlanState struct {
	Activated bool      `json:"activated"`
	Tier      PlanTier  `json:"tier"`
	Quota     int       `json:"quota"`
	ExpiresAt time.Time `json:"expiresAt"`
	Theme     string    `json:"theme"`
}

// FreePlan returns the default, inactive entitlement state.
func FreePlan() PlanState {
	return PlanState{Tier: TierFree}
}

// Unlimited reports whether the plan has no usage cap.
func (p PlanState) Unlimited() bool {
	return p.Quota == UnlimitedQuota
}

// Expired reports whether the plan's expiry timestamp has passed.
// Plans without an expiry never expire.
func (p PlanState) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && p.ExpiresAt.Before(now)
}
