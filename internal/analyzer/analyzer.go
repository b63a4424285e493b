// Package analyzer orchestrates the analyze-and-record cycle: image
// normalization, the external model call with retry, result validation,
// quota accounting and history persistence.
package analyzer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"chart-advisor/internal/ai"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/imaging"
	"chart-advisor/internal/logging"
	"chart-advisor/internal/models"
	"chart-advisor/pkg/utils"
)

// QuotaKeeper gates analyses against the active plan.
type QuotaKeeper interface {
	// CheckQuota returns nil when an analysis may proceed.
	CheckQuota() error
	// ConsumeQuota records one completed analysis.
	ConsumeQuota() error
}

// HistoryRecorder persists completed analyses.
type HistoryRecorder interface {
	AppendHistory(entry models.HistoryEntry) error
}

// Analyzer coordinates a single chart analysis request.
type Analyzer struct {
	chart   ai.ChartModel
	quota   QuotaKeeper
	history HistoryRecorder
	imaging imaging.Options
	retry   utils.RetryConfig
	logger  zerolog.Logger

	inFlight atomic.Bool
}

// Options configures the analyzer.
type Options struct {
	Imaging imaging.Options
	Retry   utils.RetryConfig
}

// DefaultOptions returns the default analyzer options.
func DefaultOptions() Options {
	return Options{
		Imaging: imaging.DefaultOptions(),
		Retry:   utils.DefaultRetryConfig(),
	}
}

// New creates an analyzer. quota and history may be nil, in which case
// quota accounting and history persistence are skipped.
func New(chart ai.ChartModel, quota QuotaKeeper, history HistoryRecorder, opts Options, logger zerolog.Logger) *Analyzer {
	retry := opts.Retry
	// Transient failures only; permanent failures surface immediately.
	retry.RetryIf = apperrors.Transient

	return &Analyzer{
		chart:   chart,
		quota:   quota,
		history: history,
		imaging: opts.Imaging,
		retry:   retry,
		logger:  logging.WithComponent(logger, "analyzer"),
	}
}

// Analyze runs one full analysis cycle for a chart screenshot.
//
// At most one analysis is in flight at a time; a second call while one is
// running fails fast. The quota is checked before any work and consumed
// only after a successful model response.
func (a *Analyzer) Analyze(ctx context.Context, imageData []byte, question string) (*models.AnalysisResult, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, apperrors.ErrAnalysisInFlight
	}
	defer a.inFlight.Store(false)

	if a.quota != nil {
		if err := a.quota.CheckQuota(); err != nil {
			return nil, err
		}
	}

	normalized, err := imaging.Normalize(imageData, a.imaging)
	if err != nil {
		return nil, err
	}

	result, err := utils.RetryWithResult(ctx, a.retry, func() (*models.AnalysisResult, error) {
		return a.chart.AnalyzeChart(ctx, normalized.Data, normalized.MIMEType, question)
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Chart analysis failed")
		return nil, err
	}

	logging.LogAnalysis(a.logger, result.Symbol, string(result.Recommendation),
		result.Confidence, result.IsValidChart)

	if a.quota != nil {
		if err := a.quota.ConsumeQuota(); err != nil {
			a.logger.Warn().Err(err).Msg("Quota accounting failed")
		}
	}

	// A non-chart image is an advisory outcome, not an error, but it is
	// not worth remembering.
	if a.history != nil && result.IsValidChart {
		entry := models.HistoryEntry{
			ID:        utils.NewID(),
			Timestamp: time.Now(),
			Result:    *result,
		}
		if err := a.history.AppendHistory(entry); err != nil {
			a.logger.Warn().Err(err).Msg("History persistence failed")
		}
	}

	return result, nil
}
