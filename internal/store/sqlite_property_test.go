package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"chart-advisor/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "advisor_test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func historyEntry(i int, at time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		ID:        fmt.Sprintf("entry-%06d", i),
		Timestamp: at,
		Result: models.AnalysisResult{
			IsValidChart:   true,
			Symbol:         fmt.Sprintf("SYM%d", i%7),
			Recommendation: models.SignalBuy,
			Confidence:     0.5,
			Reasoning:      []string{"سبب فني"},
			Summary:        "ملخص",
		},
	}
}

// Property: however many analyses are appended, the history never exceeds
// its cap and always returns the newest entries first.
func TestProperty_HistoryBoundedNewestFirst(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("history is capped and newest first", prop.ForAll(
		func(count int) bool {
			store := newTestStore(t)
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			for i := 0; i < count; i++ {
				entry := historyEntry(i, base.Add(time.Duration(i)*time.Minute))
				if err := store.AppendHistory(entry); err != nil {
					return false
				}
			}

			entries, err := store.GetHistory(context.Background(), 0)
			if err != nil {
				return false
			}

			want := count
			if want > models.HistoryCap {
				want = models.HistoryCap
			}
			if len(entries) != want {
				return false
			}
			for i := 1; i < len(entries); i++ {
				if entries[i].Timestamp.After(entries[i-1].Timestamp) {
					return false
				}
			}
			// The survivors are the most recent appends.
			if count > 0 {
				if entries[0].ID != fmt.Sprintf("entry-%06d", count-1) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 70),
	))

	properties.TestingRun(t)
}

// Property: favorites behave as a set; adding twice and removing once
// leaves the symbol absent, and re-adding is always idempotent.
func TestProperty_FavoritesSetSemantics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	store := newTestStore(t)
	ctx := context.Background()

	properties.Property("double add keeps one entry", prop.ForAll(
		func(n int) bool {
			symbol := fmt.Sprintf("FAV%d", n)
			store.AddFavorite(ctx, symbol)
			store.AddFavorite(ctx, symbol)

			favorites, err := store.GetFavorites(ctx)
			if err != nil {
				return false
			}
			seen := 0
			for _, f := range favorites {
				if f == symbol {
					seen++
				}
			}
			return seen == 1
		},
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t)
}

func TestHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	entry := models.HistoryEntry{
		ID:        "round-trip-1",
		Timestamp: time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC),
		Result: models.AnalysisResult{
			IsValidChart:     true,
			Symbol:           "XAUUSD",
			Recommendation:   models.SignalSell,
			Confidence:       0.73,
			Reasoning:        []string{"كسر الدعم", "ضعف الزخم"},
			SupportLevels:    []string{"2301.5", "2287.0"},
			ResistanceLevels: []string{"2344.0"},
			Indicators: models.IndicatorSummary{
				RSI:  "تشبع شرائي",
				MACD: "تقاطع هابط",
			},
			Summary:           "اتجاه هابط قصير المدى",
			SuggestedDuration: models.Duration15s,
		},
	}

	if err := store.AppendHistory(entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	entries, err := store.GetHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	got := entries[0].Result
	if got.Symbol != "XAUUSD" || got.Recommendation != models.SignalSell {
		t.Errorf("result did not round-trip: %+v", got)
	}
	if len(got.SupportLevels) != 2 || got.SupportLevels[0] != "2301.5" {
		t.Errorf("support levels did not round-trip: %v", got.SupportLevels)
	}
	if got.Indicators.MACD != "تقاطع هابط" {
		t.Errorf("indicators did not round-trip: %+v", got.Indicators)
	}
}

func TestLoadProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.AddFavorite(ctx, "XAUUSD")
	store.AddToWatchlist(ctx, "BTCUSD", "crypto")
	store.AddToWatchlist(ctx, "ETHUSD", "crypto")
	store.AddToWatchlist(ctx, "EURUSD", "forex")
	store.AppendHistory(historyEntry(1, time.Now()))

	profile, err := store.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(profile.Favorites) != 1 || profile.Favorites[0] != "XAUUSD" {
		t.Errorf("favorites = %v", profile.Favorites)
	}
	if len(profile.Watchlists) != 2 {
		t.Fatalf("watchlists = %d, want 2", len(profile.Watchlists))
	}
	// Lists come back sorted by name.
	if profile.Watchlists[0].Name != "crypto" || len(profile.Watchlists[0].Symbols) != 2 {
		t.Errorf("first watchlist = %+v", profile.Watchlists[0])
	}
	if profile.Watchlists[1].Name != "forex" {
		t.Errorf("second watchlist = %+v", profile.Watchlists[1])
	}
	if len(profile.History) != 1 {
		t.Errorf("history = %d, want 1", len(profile.History))
	}
}

func TestClearHistory(t *testing.T) {
	store := newTestStore(t)
	store.AppendHistory(historyEntry(1, time.Now()))
	store.AppendHistory(historyEntry(2, time.Now()))

	if err := store.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	entries, err := store.GetHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d after clear, want 0", len(entries))
	}
}

func TestWatchlists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.AddToWatchlist(ctx, "EURUSD", "forex")
	store.AddToWatchlist(ctx, "GBPUSD", "forex")
	store.AddToWatchlist(ctx, "XAUUSD", "metals")
	store.AddToWatchlist(ctx, "EURUSD", "forex") // duplicate

	forex, err := store.GetWatchlist(ctx, "forex")
	if err != nil {
		t.Fatalf("GetWatchlist: %v", err)
	}
	if len(forex) != 2 {
		t.Errorf("forex list = %v, want 2 symbols", forex)
	}

	all, err := store.GetAllWatchlists(ctx)
	if err != nil {
		t.Fatalf("GetAllWatchlists: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("lists = %d, want 2", len(all))
	}

	if err := store.RemoveFromWatchlist(ctx, "GBPUSD", "forex"); err != nil {
		t.Fatalf("RemoveFromWatchlist: %v", err)
	}
	forex, _ = store.GetWatchlist(ctx, "forex")
	if len(forex) != 1 || forex[0] != "EURUSD" {
		t.Errorf("forex after removal = %v", forex)
	}
}

func TestVisitCounter(t *testing.T) {
	store := newTestStore(t)

	if v, err := store.GetVisits(); err != nil || v != 0 {
		t.Fatalf("initial visits = %d, %v", v, err)
	}
	for i := 1; i <= 3; i++ {
		v, err := store.IncrementVisits()
		if err != nil {
			t.Fatalf("IncrementVisits: %v", err)
		}
		if v != int64(i) {
			t.Errorf("visits = %d, want %d", v, i)
		}
	}
}

func TestPlanPersistenceRoundTrip(t *testing.T) {
	store := newTestStore(t)

	plan := models.PlanState{
		Activated: true,
		Tier:      models.TierGold,
		Quota:     180,
		ExpiresAt: time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC),
		Theme:     "gold",
	}
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	got, err := store.LoadPlan()
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if got.Tier != models.TierGold || got.Quota != 180 {
		t.Errorf("plan did not round-trip: %+v", got)
	}
	if !got.ExpiresAt.Equal(plan.ExpiresAt) {
		t.Errorf("expiry did not round-trip: %v", got.ExpiresAt)
	}

	// Saving again with new state overwrites, not duplicates.
	plan.Quota = 179
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	got, _ = store.LoadPlan()
	if got.Quota != 179 {
		t.Errorf("quota = %d, want 179", got.Quota)
	}
}

func TestSessionFlag(t *testing.T) {
	store := newTestStore(t)

	authed, err := store.Authenticated()
	if err != nil || authed {
		t.Fatalf("fresh store authenticated = %v, %v", authed, err)
	}

	if err := store.SetAuthenticated(true); err != nil {
		t.Fatalf("SetAuthenticated: %v", err)
	}
	if authed, _ = store.Authenticated(); !authed {
		t.Error("session flag not persisted")
	}

	store.SetAuthenticated(false)
	if authed, _ = store.Authenticated(); authed {
		t.Error("session flag not cleared")
	}
}

func TestThemePersistence(t *testing.T) {
	store := newTestStore(t)

	// Default when nothing stored.
	theme, err := store.LoadTheme()
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme != models.DefaultTheme() {
		t.Errorf("theme = %+v, want default", theme)
	}

	custom := models.ThemeConfig{BlurRadius: 24, Gradient: models.GradientEmerald}
	if err := store.SaveTheme(custom); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	theme, _ = store.LoadTheme()
	if theme != custom {
		t.Errorf("theme = %+v, want %+v", theme, custom)
	}

	// Out-of-range themes are rejected at write time.
	bad := models.ThemeConfig{BlurRadius: 99, Gradient: models.GradientOcean}
	if err := store.SaveTheme(bad); err == nil {
		t.Error("expected error for out-of-range blur")
	}
}

func TestUnknownEnvelopeVersionReadsAsAbsent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.db.Exec(`
		INSERT INTO kv (key, version, data) VALUES ('plan', 99, '{"future":"shape"}')`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.LoadPlan()
	if err == nil {
		t.Fatal("expected not-found for future envelope version")
	}
}
