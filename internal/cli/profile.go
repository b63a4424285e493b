package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chart-advisor/internal/models"
)

// addProfileCommands adds favorites, watchlist and theme commands.
func addProfileCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newFavoritesCmd(app))
	rootCmd.AddCommand(newWatchlistCmd(app))
	rootCmd.AddCommand(newThemeCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the full profile (favorites, watchlists, history) as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			profile, err := app.Store.LoadProfile(cmd.Context())
			if err != nil {
				return err
			}
			return output.JSON(profile)
		},
	}
}

func newFavoritesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite symbols",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a favorite symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.AddFavorite(cmd.Context(), symbol); err != nil {
				return err
			}
			output.Success("✓ %s added to favorites", symbol)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a favorite symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.RemoveFavorite(cmd.Context(), symbol); err != nil {
				return err
			}
			output.Success("✓ %s removed from favorites", symbol)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			favorites, err := app.Store.GetFavorites(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(favorites)
			}
			if len(favorites) == 0 {
				output.Dim("No favorites yet.")
				return nil
			}
			for _, symbol := range favorites {
				output.Printf("  ★ %s\n", symbol)
			}
			return nil
		},
	})

	return cmd
}

func newWatchlistCmd(app *App) *cobra.Command {
	var listName string

	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage named watchlists",
	}
	cmd.PersistentFlags().StringVar(&listName, "list", "default", "watchlist name")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.AddToWatchlist(cmd.Context(), symbol, listName); err != nil {
				return err
			}
			output.Success("✓ %s added to %s", symbol, listName)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.RemoveFromWatchlist(cmd.Context(), symbol, listName); err != nil {
				return err
			}
			output.Success("✓ %s removed from %s", symbol, listName)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show one or all watchlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}

			if cmd.Flags().Changed("list") {
				symbols, err := app.Store.GetWatchlist(cmd.Context(), listName)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(map[string][]string{listName: symbols})
				}
				printWatchlist(output, listName, symbols)
				return nil
			}

			lists, err := app.Store.GetAllWatchlists(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(lists)
			}
			if len(lists) == 0 {
				output.Dim("No watchlists yet.")
				return nil
			}
			for name, symbols := range lists {
				printWatchlist(output, name, symbols)
			}
			return nil
		},
	})

	return cmd
}

func printWatchlist(output *Output, name string, symbols []string) {
	output.Bold("%s", name)
	if len(symbols) == 0 {
		output.Dim("  (empty)")
		return
	}
	for _, symbol := range symbols {
		output.Printf("  %s\n", symbol)
	}
}

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [gradient] [blur]",
		Short: "Show or set the display theme",
		Long: `Show or set the display theme. Gradients: midnight, emerald, ember,
ocean. Blur is 0-40.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}

			theme, err := app.Store.LoadTheme()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if output.IsJSON() {
					return output.JSON(theme)
				}
				output.Bold("Theme")
				output.Printf("  Gradient: %s\n", theme.Gradient)
				output.Printf("  Blur:     %d\n", theme.BlurRadius)
				return nil
			}

			theme.Gradient = args[0]
			if len(args) == 2 {
				blur, err := strconv.Atoi(args[1])
				if err != nil {
					output.Error("Blur must be a number between 0 and %d", models.MaxBlurRadius)
					return err
				}
				theme.BlurRadius = blur
			}

			if err := app.Store.SaveTheme(theme); err != nil {
				output.Error("Invalid theme: %v", err)
				return err
			}
			output.Success("✓ Theme updated: %s, blur %d", theme.Gradient, theme.BlurRadius)
			return nil
		},
	}
	return cmd
}
