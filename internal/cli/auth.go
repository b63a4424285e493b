package cli

import (
	"github.com/spf13/cobra"

	apperrors "chart-advisor/internal/errors"
)

// addAuthCommands adds passcode gate commands.
func addAuthCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <passcode>",
		Short: "Unlock the advisor with the entry passcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Gate == nil {
				output.Error("Entitlement gate unavailable")
				return nil
			}

			if err := app.Gate.Login(args[0]); err != nil {
				output.Error("%s", apperrors.UserMessage(err))
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]bool{"authenticated": true})
			}
			output.Success("✓ Unlocked")
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Lock the advisor and reset the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Gate == nil {
				output.Error("Entitlement gate unavailable")
				return nil
			}

			if err := app.Gate.Logout(); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]bool{"authenticated": false})
			}
			output.Success("✓ Locked, plan reset to free")
			return nil
		},
	}
}

// resetOnCredentialFailure drops the session and plan when the upstream
// rejects the stored credential, so the next command forces a fresh login.
func resetOnCredentialFailure(app *App, output *Output, err error) {
	if app.Gate == nil || !apperrors.Is(err, apperrors.ErrCredentialNotFound) {
		return
	}
	if lerr := app.Gate.Logout(); lerr != nil {
		app.Logger.Warn().Err(lerr).Msg("Session reset after credential failure failed")
		return
	}
	app.Logger.Warn().Msg("Credential rejected, session reset")
	output.Dim("Session reset. Check gemini.api_key, then run 'advisor login <passcode>' again.")
}

// requireAuth guards commands behind the passcode gate.
func requireAuth(app *App, output *Output) error {
	if app.Gate == nil {
		return nil
	}
	if err := app.Gate.RequireAuth(); err != nil {
		output.Error("%s", apperrors.UserMessage(err))
		output.Dim("Run 'advisor login <passcode>' first.")
		return err
	}
	return nil
}
