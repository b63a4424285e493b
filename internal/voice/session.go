package voice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chart-advisor/internal/ai"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/logging"
)

// Timing controls silence-based turn taking.
type Timing struct {
	// FinalSilence is the pause after a final segment before dispatch.
	FinalSilence time.Duration
	// InterimSilence is the longer pause used while only interim
	// segments are arriving.
	InterimSilence time.Duration
	// MaxTurns ends the call after this many completed exchanges.
	// Zero means unlimited.
	MaxTurns int
}

// DefaultTiming returns the default silence windows.
func DefaultTiming() Timing {
	return Timing{
		FinalSilence:   1500 * time.Millisecond,
		InterimSilence: 2500 * time.Millisecond,
	}
}

// Events receives session callbacks. All fields are optional.
type Events struct {
	// OnState fires on every state change.
	OnState func(State)
	// OnTranscript fires with the user's dispatched utterance.
	OnTranscript func(text string)
	// OnReply fires with the assistant's text reply.
	OnReply func(text string)
	// OnError fires with the error that failed a turn.
	OnError func(err error)
}

// Session coordinates one voice conversation. Exactly one utterance is
// processed at a time; there is at most one pending silence timer.
type Session struct {
	mu        sync.Mutex
	state     State
	muted     bool
	closed    bool
	dialect   string
	utterance strings.Builder
	timer     *time.Timer
	history   []ai.Turn
	turns     int
	startedAt time.Time

	chat       ai.ChatModel
	speech     ai.SpeechModel
	recognizer Recognizer
	player     Player
	timing     Timing
	events     Events
	ctx        context.Context
	done       chan struct{}
	logger     zerolog.Logger
}

// NewSession creates an idle voice session.
func NewSession(chat ai.ChatModel, speech ai.SpeechModel, recognizer Recognizer, player Player, dialect string, timing Timing, events Events, logger zerolog.Logger) (*Session, error) {
	if !ai.ValidDialect(dialect) {
		return nil, apperrors.NewValidationError("dialect", dialect, "unsupported dialect")
	}
	if recognizer == nil {
		return nil, apperrors.ErrSpeechUnavailable
	}

	return &Session{
		state:      StateIdle,
		done:       make(chan struct{}),
		dialect:    dialect,
		chat:       chat,
		speech:     speech,
		recognizer: recognizer,
		player:     player,
		timing:     timing,
		events:     events,
		logger:     logging.WithComponent(logger, "voice"),
	}, nil
}

// Start begins listening. ctx bounds the whole session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.ErrSessionClosed
	}
	if s.state != StateIdle {
		return apperrors.NewVoiceError(s.state.String(), "start", nil)
	}

	if err := s.recognizer.Start(); err != nil {
		return apperrors.Wrap(apperrors.ErrSpeechUnavailable, err.Error())
	}

	s.ctx = ctx
	s.startedAt = time.Now()
	s.setStateLocked(StateListening)
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Muted reports the mute flag.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Duration returns how long the session has been running.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// Done is closed when the session ends, whether by Close or because the
// turn allowance ran out.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// History returns a copy of the conversation so far.
func (s *Session) History() []ai.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ai.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// SetDialect switches the persona for subsequent turns.
func (s *Session) SetDialect(dialect string) error {
	if !ai.ValidDialect(dialect) {
		return apperrors.NewValidationError("dialect", dialect, "unsupported dialect")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialect = dialect
	return nil
}

// Mute pauses or resumes capture without ending the session. While muted,
// incoming segments are discarded and the recognizer is not restarted.
func (s *Session) Mute(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.muted == muted {
		return
	}
	s.muted = muted

	if muted {
		s.recognizer.Stop()
		s.cancelTimerLocked()
		s.utterance.Reset()
	} else if s.state == StateListening {
		if err := s.recognizer.Start(); err != nil {
			s.logger.Warn().Err(err).Msg("Capture restart failed after unmute")
		}
	}
}

// HandleSpeech feeds one recognized segment into the session. Segments are
// ignored unless the session is listening and unmuted. Each segment cancels
// and re-arms the silence timer, so at most one dispatch is ever pending.
func (s *Session) HandleSpeech(text string, final bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.muted || s.state != StateListening {
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	window := s.timing.InterimSilence
	if final {
		if s.utterance.Len() > 0 {
			s.utterance.WriteByte(' ')
		}
		s.utterance.WriteString(strings.TrimSpace(text))
		window = s.timing.FinalSilence
	}

	s.cancelTimerLocked()
	s.timer = time.AfterFunc(window, s.dispatch)
}

// Close ends the session from any state: timers cancelled, capture and
// playback stopped, late results discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	s.cancelTimerLocked()
	s.recognizer.Stop()
	if s.player != nil {
		s.player.Stop()
	}
	s.utterance.Reset()
	s.setStateLocked(StateIdle)

	s.logger.Info().Dur("duration", time.Since(s.startedAt)).Msg("Voice session closed")
}

// dispatch fires when the silence timer elapses.
func (s *Session) dispatch() {
	s.mu.Lock()
	if s.closed || s.muted || s.state != StateListening || s.utterance.Len() == 0 {
		s.mu.Unlock()
		return
	}
	utterance := strings.TrimSpace(s.utterance.String())
	s.utterance.Reset()
	s.timer = nil
	s.setStateLocked(StateProcessing)
	history := make([]ai.Turn, len(s.history))
	copy(history, s.history)
	dialect := s.dialect
	ctx := s.ctx
	s.mu.Unlock()

	if s.events.OnTranscript != nil {
		s.events.OnTranscript(utterance)
	}

	s.respond(ctx, history, utterance, dialect)
}

// respond runs one turn: text reply, then capture pause, then synthesis and
// playback. Whatever happens, the session returns to listening unless it
// was closed or muted in the meantime.
func (s *Session) respond(ctx context.Context, history []ai.Turn, utterance, dialect string) {
	start := time.Now()
	var reply string
	var err error

	defer func() {
		s.finishTurn()
		if err == nil {
			logging.LogVoiceTurn(s.logger, dialect, len(utterance), len(reply), time.Since(start))
		}
	}()

	// Capture keeps running during the text call; only playback needs
	// the microphone paused.
	reply, err = s.chat.Reply(ctx, history, utterance, dialect)
	if err != nil {
		s.reportError(err)
		return
	}

	if s.discarded() {
		return
	}

	s.mu.Lock()
	s.history = append(s.history,
		ai.Turn{Role: "user", Text: utterance},
		ai.Turn{Role: "model", Text: reply},
	)
	s.turns++
	s.mu.Unlock()

	if s.events.OnReply != nil {
		s.events.OnReply(reply)
	}

	if s.speech == nil || s.player == nil {
		return
	}

	s.recognizer.Stop()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StateSpeaking)
	s.mu.Unlock()

	pcm, err := s.speech.Synthesize(ctx, reply)
	if err != nil {
		s.reportError(err)
		return
	}
	if s.discarded() {
		return
	}
	if err = s.player.Play(ctx, pcm); err != nil {
		s.reportError(err)
	}
}

// finishTurn restores the listening state after a turn, successful or not.
// A session that has used up its turn allowance hangs up instead.
func (s *Session) finishTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.setStateLocked(StateIdle)
		return
	}
	if s.timing.MaxTurns > 0 && s.turns >= s.timing.MaxTurns {
		s.closeLocked()
		return
	}
	s.setStateLocked(StateListening)
	if !s.muted {
		if err := s.recognizer.Start(); err != nil {
			s.logger.Warn().Err(err).Msg("Capture restart failed")
		}
	}
}

// discarded reports whether the turn's results must be dropped because the
// session was closed while the external call was in flight.
func (s *Session) discarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) reportError(err error) {
	if s.discarded() {
		return
	}
	s.logger.Warn().Err(err).Msg("Voice turn failed")
	if s.events.OnError != nil {
		s.events.OnError(err)
	}
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.state = state
	if s.events.OnState != nil {
		go s.events.OnState(state)
	}
}
