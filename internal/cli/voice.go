package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chart-advisor/internal/ai"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/voice"
)

// addVoiceCommands adds the voice session command.
func addVoiceCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVoiceCmd(app))
}

func newVoiceCmd(app *App) *cobra.Command {
	var dialect string
	var noAudio bool

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Start a voice advisory session",
		Long: `Start a conversational session with the advisor persona. Type a line and
press enter to speak; the reply is synthesized to a WAV file. Press
Ctrl+C or close stdin to hang up.

Dialects: sudanese, saudi, syrian, algerian, tunisian.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireAuth(app, output); err != nil {
				return err
			}
			if app.AI == nil {
				output.Error("No API key configured. Set gemini.api_key in credentials.toml or GEMINI_API_KEY.")
				return apperrors.ErrConfigInvalid
			}
			if !ai.ValidDialect(dialect) {
				output.Error("Unknown dialect %q. Choose one of: %v", dialect, ai.Dialects())
				return apperrors.NewValidationError("dialect", dialect, "unsupported dialect")
			}

			recognizer := voice.NewLineRecognizer(cmd.InOrStdin())

			var speech ai.SpeechModel
			var player voice.Player
			if !noAudio {
				speech = app.AI
				audioDir := filepath.Join(app.Config.BaseDir(), "audio")
				player = voice.NewFilePlayer(audioDir, app.Config.Voice.SampleRate, func(path string) {
					output.Dim("  ♪ %s", path)
				})
			}

			events := voice.Events{
				OnState: func(state voice.State) {
					app.Logger.Debug().Str("state", state.String()).Msg("Voice state changed")
				},
				OnTranscript: func(text string) {
					output.Dim("you: %s", text)
				},
				OnReply: func(text string) {
					output.Info("مازن: %s", text)
				},
				OnError: func(err error) {
					output.Warning("%s", apperrors.UserMessage(err))
					resetOnCredentialFailure(app, output, err)
				},
			}

			session, err := voice.NewSession(app.AI, speech, recognizer, player, dialect,
				voice.Timing{
					FinalSilence:   app.Config.Voice.FinalSilence,
					InterimSilence: app.Config.Voice.InterimSilence,
					MaxTurns:       app.Config.Voice.MaxTurns,
				}, events, app.Logger)
			if err != nil {
				output.Error("%s", apperrors.UserMessage(err))
				return err
			}
			recognizer.Bind(session.HandleSpeech)

			if err := session.Start(cmd.Context()); err != nil {
				output.Error("%s", apperrors.UserMessage(err))
				return err
			}
			defer session.Close()

			output.Success("✓ Voice session started (%s). Type to talk, Ctrl+C to hang up.", dialect)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-sigCh:
			case <-cmd.Context().Done():
			case <-session.Done():
			}

			output.Println()
			output.Dim("Call duration: %s", session.Duration().Round(time.Second))
			return nil
		},
	}

	defaultDialect := "sudanese"
	if app.Config != nil && app.Config.Voice.Dialect != "" {
		defaultDialect = app.Config.Voice.Dialect
	}
	cmd.Flags().StringVar(&dialect, "dialect", defaultDialect, "advisor persona dialect")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "text-only replies, skip speech synthesis")
	return cmd
}
