package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/models"
	"chart-advisor/pkg/utils"
)

// addAnalysisCommands adds the analyze and history commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a chart screenshot",
		Long: `Analyze a chart screenshot with the external AI model.

The image is downscaled and re-encoded before upload. The result includes
a BUY/SELL/HOLD recommendation, confidence, support/resistance levels and
indicator summaries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireAuth(app, output); err != nil {
				return err
			}
			if app.Analyzer == nil {
				output.Error("No API key configured. Set gemini.api_key in credentials.toml or GEMINI_API_KEY.")
				return apperrors.ErrConfigInvalid
			}

			imageData, err := os.ReadFile(args[0])
			if err != nil {
				output.Error("Cannot read image: %v", err)
				return err
			}

			result, err := app.Analyzer.Analyze(cmd.Context(), imageData, question)
			if err != nil {
				output.Error("%s", apperrors.UserMessage(err))
				resetOnCredentialFailure(app, output, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printAnalysis(output, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "optional question about the chart")
	return cmd
}

func printAnalysis(output *Output, result *models.AnalysisResult) {
	if !result.IsValidChart {
		output.Warning("الصورة ليست شارت أسعار. جرّب لقطة شاشة لرسم بياني.")
		return
	}

	output.Bold("%s", result.Symbol)
	output.Printf("  Recommendation: %s\n", output.Signal(result.Recommendation))
	output.Printf("  Confidence:     %s\n", output.ConfidenceBar(result.Confidence))
	if result.SuggestedDuration != "" {
		output.Printf("  Duration:       %s\n", result.SuggestedDuration)
	}
	output.Println()

	if len(result.Reasoning) > 0 {
		output.Bold("Reasoning")
		for _, reason := range result.Reasoning {
			output.Printf("  • %s\n", reason)
		}
		output.Println()
	}

	if len(result.SupportLevels) > 0 || len(result.ResistanceLevels) > 0 {
		output.Bold("Key Levels")
		output.Printf("  Support:    %s\n", output.Green(utils.FormatLevels(result.SupportLevels)))
		output.Printf("  Resistance: %s\n", output.Red(utils.FormatLevels(result.ResistanceLevels)))
		output.Println()
	}

	ind := result.Indicators
	if ind.RSI != "" || ind.MACD != "" || ind.MovingAverages != "" {
		output.Bold("Indicators")
		if ind.RSI != "" {
			output.Printf("  RSI:  %s\n", ind.RSI)
		}
		if ind.MACD != "" {
			output.Printf("  MACD: %s\n", ind.MACD)
		}
		if ind.MovingAverages != "" {
			output.Printf("  MA:   %s\n", ind.MovingAverages)
		}
		output.Println()
	}

	if result.Summary != "" {
		output.Info("%s", result.Summary)
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}

			if clear {
				if err := app.Store.ClearHistory(cmd.Context()); err != nil {
					return err
				}
				output.Success("✓ History cleared")
				return nil
			}

			entries, err := app.Store.GetHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Dim("No analyses recorded yet.")
				return nil
			}

			table := NewTable(output, "TIME", "SYMBOL", "SIGNAL", "CONFIDENCE", "SUMMARY")
			for _, entry := range entries {
				table.AddRow(
					entry.Timestamp.Format(app.timestampFormat()),
					entry.Result.Symbol,
					output.Signal(entry.Result.Recommendation),
					utils.FormatConfidence(entry.Result.Confidence),
					utils.TruncateText(strings.ReplaceAll(entry.Result.Summary, "\n", " "), 40),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries to show (default: all stored)")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all stored analyses")
	return cmd
}
