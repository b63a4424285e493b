// Package voice implements the turn-taking loop between live speech capture
// and synthesized playback as a small state machine.
package voice

import "context"

// State is the voice session state.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Segment is one chunk of recognized speech. Final segments terminate an
// utterance fragment; interim segments mean the user is still speaking.
type Segment struct {
	Text  string
	Final bool
}

// Recognizer abstracts the host platform's speech capture.
type Recognizer interface {
	// Start begins capture. Segments are delivered to the session.
	Start() error
	// Stop pauses capture. It must be safe to call repeatedly.
	Stop()
}

// Player abstracts audio playback of single-channel 16-bit PCM at 24kHz.
type Player interface {
	// Play blocks until playback completes or ctx is cancelled.
	Play(ctx context.Context, pcm []byte) error
	// Stop aborts any ongoing playback.
	Stop()
}
