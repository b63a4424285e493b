// Package entitlement implements the activation and quota gate: passcode
// entry, static activation-code tiers, plan expiry and quota accounting.
package entitlement

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/logging"
	"chart-advisor/internal/models"
)

// TierSpec is the fixed grant attached to a tier.
type TierSpec struct {
	Quota    int
	Duration time.Duration
	Theme    string
}

// tierSpecs holds the per-tier grants. Platinum has no usage cap.
var tierSpecs = map[models.PlanTier]TierSpec{
	models.TierSilver:   {Quota: 25, Duration: 24 * time.Hour, Theme: "silver"},
	models.TierGold:     {Quota: 200, Duration: 7 * 24 * time.Hour, Theme: "gold"},
	models.TierPlatinum: {Quota: models.UnlimitedQuota, Duration: 30 * 24 * time.Hour, Theme: "platinum"},
}

// SpecFor returns the grant for a tier.
func SpecFor(tier models.PlanTier) (TierSpec, bool) {
	s, ok := tierSpecs[tier]
	return s, ok
}

// PlanStore persists entitlement state across sessions.
type PlanStore interface {
	LoadPlan() (models.PlanState, error)
	SavePlan(models.PlanState) error
	SetAuthenticated(bool) error
	Authenticated() (bool, error)
}

// Gate guards analyses behind the passcode and the active plan.
type Gate struct {
	mu       sync.Mutex
	store    PlanStore
	passcode string
	plan     models.PlanState
	now      func() time.Time
	logger   zerolog.Logger
}

// NewGate loads the persisted plan and returns a gate. A plan found expired
// at load time is reset to free before anything else can observe it.
func NewGate(store PlanStore, passcode string, logger zerolog.Logger) (*Gate, error) {
	g := &Gate{
		store:    store,
		passcode: passcode,
		now:      time.Now,
		logger:   logging.WithComponent(logger, "entitlement"),
	}

	plan, err := store.LoadPlan()
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrDataNotFound) {
			return nil, apperrors.Wrap(err, "loading plan")
		}
		plan = models.FreePlan()
	}

	if plan.Activated && plan.Expired(g.now()) {
		g.logger.Info().Str("tier", string(plan.Tier)).Msg("Plan expired, resetting to free")
		plan = models.FreePlan()
		if err := store.SavePlan(plan); err != nil {
			return nil, apperrors.Wrap(err, "resetting expired plan")
		}
	}

	g.plan = plan
	return g, nil
}

// Login verifies the entry passcode and marks the session authenticated.
func (g *Gate) Login(passcode string) error {
	if strings.TrimSpace(passcode) != g.passcode {
		return apperrors.ErrInvalidPasscode
	}
	if err := g.store.SetAuthenticated(true); err != nil {
		return apperrors.Wrap(err, "persisting session")
	}
	g.logger.Info().Msg("Session authenticated")
	return nil
}

// RequireAuth returns nil when the session has passed the passcode gate.
func (g *Gate) RequireAuth() error {
	ok, err := g.store.Authenticated()
	if err != nil {
		return apperrors.Wrap(err, "reading session")
	}
	if !ok {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

// Logout clears the session and resets the plan to free.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.plan = models.FreePlan()
	if err := g.store.SavePlan(g.plan); err != nil {
		return apperrors.Wrap(err, "resetting plan")
	}
	if err := g.store.SetAuthenticated(false); err != nil {
		return apperrors.Wrap(err, "clearing session")
	}
	return nil
}

// Activate redeems an activation code. The code determines the tier; an
// unknown code leaves the current plan untouched.
func (g *Gate) Activate(code string) (models.PlanState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tier, ok := resolveTier(strings.TrimSpace(code))
	if !ok {
		return g.plan, apperrors.ErrInvalidCode
	}

	spec := tierSpecs[tier]
	plan := models.PlanState{
		Activated: true,
		Tier:      tier,
		Quota:     spec.Quota,
		ExpiresAt: g.now().Add(spec.Duration),
		Theme:     spec.Theme,
	}

	if err := g.store.SavePlan(plan); err != nil {
		return g.plan, apperrors.NewActivationError(string(tier), "persisting plan", err)
	}
	g.plan = plan

	logging.LogActivation(g.logger, string(tier), plan.Quota, plan.ExpiresAt)
	return plan, nil
}

// ActivateTier redeems a code against one specific tier's list.
func (g *Gate) ActivateTier(tier models.PlanTier, code string) (models.PlanState, error) {
	got, ok := resolveTier(strings.TrimSpace(code))
	if !ok || got != tier {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.plan, apperrors.ErrInvalidCode
	}
	return g.Activate(code)
}

// Plan returns a copy of the current plan state.
func (g *Gate) Plan() models.PlanState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.plan
}

// CheckQuota returns nil when an analysis may start. The free tier is not
// quota tracked. Expiry observed here resets the plan before refusing.
func (g *Gate) CheckQuota() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.plan.Activated {
		return nil
	}
	if g.plan.Expired(g.now()) {
		g.plan = models.FreePlan()
		if err := g.store.SavePlan(g.plan); err != nil {
			return apperrors.Wrap(err, "resetting expired plan")
		}
		return apperrors.ErrPlanExpired
	}
	if !g.plan.Unlimited() && g.plan.Quota <= 0 {
		return apperrors.ErrQuotaExhausted
	}
	return nil
}

// ConsumeQuota records one completed analysis. Free and unlimited plans are
// unaffected; the counter never goes below zero.
func (g *Gate) ConsumeQuota() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.plan.Activated || g.plan.Unlimited() || g.plan.Quota <= 0 {
		return nil
	}

	g.plan.Quota--
	if err := g.store.SavePlan(g.plan); err != nil {
		return apperrors.Wrap(err, "persisting quota")
	}
	return nil
}

func resolveTier(code string) (models.PlanTier, bool) {
	switch {
	case codeInList(code, silverCodes):
		return models.TierSilver, true
	case codeInList(code, goldCodes):
		return models.TierGold, true
	case codeInList(code, platinumCodes):
		return models.TierPlatinum, true
	}
	return models.TierFree, false
}
