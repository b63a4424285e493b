package cli

import (
	"time"

	"github.com/spf13/cobra"

	"chart-advisor/internal/entitlement"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/models"
	"chart-advisor/pkg/utils"
)

// addPlanCommands adds plan activation and status commands.
func addPlanCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newActivateCmd(app))
	rootCmd.AddCommand(newPlanCmd(app))
}

func newActivateCmd(app *App) *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "activate <code>",
		Short: "Activate a subscription plan with a confirmation code",
		Long: `Activate a subscription plan. The code determines the tier unless --tier
pins it, in which case the code must belong to that tier's list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireAuth(app, output); err != nil {
				return err
			}
			if app.Gate == nil {
				output.Error("Entitlement gate unavailable")
				return nil
			}

			var plan models.PlanState
			var err error
			if tier != "" {
				plan, err = app.Gate.ActivateTier(models.PlanTier(tier), args[0])
			} else {
				plan, err = app.Gate.Activate(args[0])
			}
			if err != nil {
				output.Error("%s", apperrors.UserMessage(err))
				return err
			}

			if output.IsJSON() {
				return output.JSON(plan)
			}
			output.Success("✓ Plan activated: %s", output.Tier(plan.Tier))
			output.Printf("  Analyses: %s\n", utils.FormatQuota(plan.Quota))
			output.Printf("  Valid until: %s\n", plan.ExpiresAt.Format(app.timestampFormat()))
			return nil
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "require the code to match this tier (silver, gold, platinum)")
	return cmd
}

func newPlanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the active plan, remaining quota and expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Gate == nil {
				output.Error("Entitlement gate unavailable")
				return nil
			}

			plan := app.Gate.Plan()
			if output.IsJSON() {
				return output.JSON(plan)
			}

			output.Bold("Current Plan")
			output.Printf("  Tier: %s\n", output.Tier(plan.Tier))
			if !plan.Activated {
				output.Dim("  Free tier: analyses are not quota tracked.")
				printTierCatalog(output)
				return nil
			}

			output.Printf("  Remaining analyses: %s\n", utils.FormatQuota(plan.Quota))
			remaining := time.Until(plan.ExpiresAt)
			if remaining > 0 {
				output.Printf("  Expires: %s (%s left)\n",
					plan.ExpiresAt.Format(app.timestampFormat()),
					remaining.Round(time.Minute))
			}
			return nil
		},
	}
}

func printTierCatalog(output *Output) {
	output.Println()
	output.Bold("Available Tiers")
	table := NewTable(output, "TIER", "ANALYSES", "VALIDITY")
	for _, tier := range []models.PlanTier{models.TierSilver, models.TierGold, models.TierPlatinum} {
		spec, _ := entitlement.SpecFor(tier)
		table.AddRow(
			output.Tier(tier),
			utils.FormatQuota(spec.Quota),
			spec.Duration.String(),
		)
	}
	table.Render()
}
