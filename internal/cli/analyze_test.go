package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"chart-advisor/internal/analyzer"
	"chart-advisor/internal/entitlement"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/models"
)

type memPlanStore struct {
	plan    models.PlanState
	hasPlan bool
	authed  bool
}

func (m *memPlanStore) LoadPlan() (models.PlanState, error) {
	if !m.hasPlan {
		return models.PlanState{}, apperrors.ErrDataNotFound
	}
	return m.plan, nil
}

func (m *memPlanStore) SavePlan(p models.PlanState) error {
	m.plan, m.hasPlan = p, true
	return nil
}

func (m *memPlanStore) SetAuthenticated(v bool) error { m.authed = v; return nil }

func (m *memPlanStore) Authenticated() (bool, error) { return m.authed, nil }

// revokedChart simulates an upstream that no longer recognizes the API key.
type revokedChart struct{}

func (revokedChart) AnalyzeChart(ctx context.Context, data []byte, mimeType, question string) (*models.AnalysisResult, error) {
	return nil, apperrors.Wrap(apperrors.ErrCredentialNotFound, "key revoked")
}

func testChartFile(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	path := filepath.Join(t.TempDir(), "chart.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing test image: %v", err)
	}
	return path
}

func TestCredentialFailureResetsSession(t *testing.T) {
	store := &memPlanStore{}
	gate, err := entitlement.NewGate(store, "124568", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := gate.Login("124568"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	app := &App{
		Logger:   zerolog.Nop(),
		Gate:     gate,
		Analyzer: analyzer.New(revokedChart{}, gate, nil, analyzer.DefaultOptions(), zerolog.Nop()),
	}

	cmd := newAnalyzeCmd(app)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{testChartFile(t)})

	if err := cmd.Execute(); !apperrors.Is(err, apperrors.ErrCredentialNotFound) {
		t.Fatalf("analyze error = %v, want ErrCredentialNotFound", err)
	}

	// The stored session must not survive a rejected credential.
	if err := gate.RequireAuth(); !apperrors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Errorf("RequireAuth = %v, want ErrNotAuthenticated", err)
	}
	if gate.Plan().Activated {
		t.Error("plan not reset after credential failure")
	}
}

func TestTransientFailureKeepsSession(t *testing.T) {
	store := &memPlanStore{}
	gate, err := entitlement.NewGate(store, "124568", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	gate.Login("124568")

	app := &App{Logger: zerolog.Nop(), Gate: gate}
	output := &Output{writer: io.Discard}

	resetOnCredentialFailure(app, output, apperrors.ErrRateLimited)

	if err := gate.RequireAuth(); err != nil {
		t.Errorf("RequireAuth = %v, transient failure must not log out", err)
	}
}
