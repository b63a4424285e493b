package entitlement

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/models"
)

type memStore struct {
	plan    models.PlanState
	hasPlan bool
	authed  bool
	saveErr error
}

func (m *memStore) LoadPlan() (models.PlanState, error) {
	if !m.hasPlan {
		return models.PlanState{}, apperrors.ErrDataNotFound
	}
	return m.plan, nil
}

func (m *memStore) SavePlan(p models.PlanState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.plan = p
	m.hasPlan = true
	return nil
}

func (m *memStore) SetAuthenticated(v bool) error { m.authed = v; return nil }
func (m *memStore) Authenticated() (bool, error)  { return m.authed, nil }

func newTestGate(t *testing.T, store *memStore) *Gate {
	t.Helper()
	g, err := NewGate(store, "124568", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func allCodes() []string {
	var all []string
	all = append(all, silverCodes...)
	all = append(all, goldCodes...)
	all = append(all, platinumCodes...)
	return all
}

func tierOf(code string) models.PlanTier {
	tier, _ := resolveTier(code)
	return tier
}

func TestActivationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	codes := allCodes()

	properties.Property("known codes activate exactly their own tier", prop.ForAll(
		func(idx int) bool {
			code := codes[idx%len(codes)]
			g := newTestGate(t, &memStore{})

			plan, err := g.Activate(code)
			if err != nil {
				return false
			}
			want := tierOf(code)
			spec := tierSpecs[want]
			return plan.Activated &&
				plan.Tier == want &&
				plan.Quota == spec.Quota &&
				plan.Theme == spec.Theme
		},
		gen.IntRange(0, 1000),
	))

	properties.Property("surrounding whitespace does not affect activation", prop.ForAll(
		func(idx int, left, right int) bool {
			code := codes[idx%len(codes)]
			padded := spaces(left) + code + spaces(right)
			g := newTestGate(t, &memStore{})

			plan, err := g.Activate(padded)
			return err == nil && plan.Tier == tierOf(code)
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
	))

	properties.Property("unknown codes leave the plan unchanged", prop.ForAll(
		func(code string) bool {
			if _, ok := resolveTier(code); ok {
				return true // generated a real code, nothing to assert
			}
			store := &memStore{}
			g := newTestGate(t, store)
			before := g.Plan()

			_, err := g.Activate(code)
			return apperrors.Is(err, apperrors.ErrInvalidCode) && g.Plan() == before
		},
		gen.AlphaString(),
	))

	properties.Property("expiry is activation time plus the tier duration", prop.ForAll(
		func(idx int) bool {
			code := codes[idx%len(codes)]
			g := newTestGate(t, &memStore{})
			fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			g.now = func() time.Time { return fixed }

			plan, err := g.Activate(code)
			if err != nil {
				return false
			}
			return plan.ExpiresAt.Equal(fixed.Add(tierSpecs[plan.Tier].Duration))
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestQuotaProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("quota never drops below zero", prop.ForAll(
		func(consumes int) bool {
			g := newTestGate(t, &memStore{})
			if _, err := g.Activate(silverCodes[0]); err != nil {
				return false
			}
			for i := 0; i < consumes; i++ {
				if err := g.ConsumeQuota(); err != nil {
					return false
				}
			}
			return g.Plan().Quota >= 0
		},
		gen.IntRange(0, 60),
	))

	properties.Property("exhausted quota refuses before any external work", prop.ForAll(
		func(extra int) bool {
			g := newTestGate(t, &memStore{})
			if _, err := g.Activate(silverCodes[0]); err != nil {
				return false
			}
			total := tierSpecs[models.TierSilver].Quota + extra
			for i := 0; i < total; i++ {
				g.ConsumeQuota()
			}
			return apperrors.Is(g.CheckQuota(), apperrors.ErrQuotaExhausted)
		},
		gen.IntRange(0, 10),
	))

	properties.Property("unlimited plans are never exhausted", prop.ForAll(
		func(consumes int) bool {
			g := newTestGate(t, &memStore{})
			if _, err := g.Activate(platinumCodes[0]); err != nil {
				return false
			}
			for i := 0; i < consumes; i++ {
				g.ConsumeQuota()
			}
			return g.CheckQuota() == nil && g.Plan().Unlimited()
		},
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}

func spaces(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += " "
	}
	return s
}

func TestSilverActivationScenario(t *testing.T) {
	store := &memStore{}
	g := newTestGate(t, store)
	fixed := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	plan, err := g.Activate("#S1@48$7!")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if plan.Tier != models.TierSilver {
		t.Errorf("tier = %s, want silver", plan.Tier)
	}
	if plan.Quota != 25 {
		t.Errorf("quota = %d, want 25", plan.Quota)
	}
	if want := fixed.Add(24 * time.Hour); !plan.ExpiresAt.Equal(want) {
		t.Errorf("expiry = %v, want %v", plan.ExpiresAt, want)
	}
	if !store.plan.Activated {
		t.Error("plan not persisted")
	}
}

func TestExpiredPlanResetOnLoad(t *testing.T) {
	store := &memStore{
		hasPlan: true,
		plan: models.PlanState{
			Activated: true,
			Tier:      models.TierGold,
			Quota:     120,
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}

	g := newTestGate(t, store)
	plan := g.Plan()
	if plan.Activated || plan.Tier != models.TierFree {
		t.Errorf("expired plan not reset: %+v", plan)
	}
	if store.plan.Activated {
		t.Error("reset not persisted")
	}
}

func TestExpiryObservedMidSession(t *testing.T) {
	g := newTestGate(t, &memStore{})
	if _, err := g.Activate(goldCodes[0]); err != nil {
		t.Fatal(err)
	}

	g.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if err := g.CheckQuota(); !apperrors.Is(err, apperrors.ErrPlanExpired) {
		t.Fatalf("error = %v, want ErrPlanExpired", err)
	}
	if g.Plan().Activated {
		t.Error("plan not reset after observed expiry")
	}
}

func TestPasscodeGate(t *testing.T) {
	store := &memStore{}
	g := newTestGate(t, store)

	if err := g.RequireAuth(); !apperrors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("error = %v, want ErrNotAuthenticated", err)
	}
	if err := g.Login("000000"); !apperrors.Is(err, apperrors.ErrInvalidPasscode) {
		t.Fatalf("error = %v, want ErrInvalidPasscode", err)
	}
	if err := g.Login("124568"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := g.RequireAuth(); err != nil {
		t.Fatalf("RequireAuth after login: %v", err)
	}
}

func TestLogoutResetsPlanAndSession(t *testing.T) {
	store := &memStore{}
	g := newTestGate(t, store)
	g.Login("124568")
	g.Activate(platinumCodes[0])

	if err := g.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if g.Plan().Activated {
		t.Error("plan survived logout")
	}
	if err := g.RequireAuth(); !apperrors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Error("session survived logout")
	}
}

func TestActivateTierRejectsCrossTierCode(t *testing.T) {
	g := newTestGate(t, &memStore{})
	if _, err := g.ActivateTier(models.TierGold, silverCodes[0]); !apperrors.Is(err, apperrors.ErrInvalidCode) {
		t.Fatalf("error = %v, want ErrInvalidCode", err)
	}
	if _, err := g.ActivateTier(models.TierGold, goldCodes[2]); err != nil {
		t.Fatalf("ActivateTier: %v", err)
	}
}
