// Package ai provides clients for the external inference endpoints.
package ai

import (
	"context"

	"chart-advisor/internal/models"
)

// Turn is one exchange in a voice conversation.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// ChartModel analyzes chart screenshots.
type ChartModel interface {
	// AnalyzeChart sends a normalized chart image and an optional question
	// and returns the structured analysis.
	AnalyzeChart(ctx context.Context, image []byte, mimeType, question string) (*models.AnalysisResult, error)
}

// ChatModel generates conversational replies for the voice session.
type ChatModel interface {
	// Reply returns the assistant's reply to an utterance given the
	// conversation so far and a dialect persona.
	Reply(ctx context.Context, history []Turn, utterance, dialect string) (string, error)
}

// SpeechModel synthesizes speech audio.
type SpeechModel interface {
	// Synthesize returns single-channel 16-bit PCM audio at 24kHz.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
