package cli

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chart-advisor/internal/ai"
	"chart-advisor/internal/analyzer"
	"chart-advisor/internal/config"
	"chart-advisor/internal/entitlement"
	"chart-advisor/internal/imaging"
	"chart-advisor/internal/logging"
	"chart-advisor/internal/store"
	"chart-advisor/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Gate     *entitlement.Gate
	AI       *ai.Client
	Analyzer *analyzer.Analyzer
}

// timestampFormat returns the configured display layout for timestamps.
func (a *App) timestampFormat() string {
	if a.Config == nil || a.Config.UI.DateFormat == "" {
		return "02-Jan-2006 15:04:05"
	}
	return a.Config.UI.DateFormat + " " + a.Config.UI.TimeFormat
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	colorOutput = cfg.UI.ColorEnabled

	// Initialize SQLite store next to the config files
	dbPath := filepath.Join(cfg.BaseDir(), "advisor.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	// Initialize the entitlement gate on top of the store
	if app.Store != nil {
		gate, err := entitlement.NewGate(app.Store, cfg.Access.Passcode, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize entitlement gate")
		} else {
			app.Gate = gate
		}
	}

	// Initialize the inference client if an API key is available
	if cfg.HasAPIKey() {
		app.AI = ai.NewClient(ai.Options{
			APIKey:      cfg.Credentials.Gemini.APIKey,
			BaseURL:     cfg.AI.Endpoint,
			ChartModel:  cfg.AI.ChartModel,
			ChatModel:   cfg.AI.ChatModel,
			SpeechModel: cfg.AI.SpeechModel,
			Timeout:     cfg.AI.Timeout,
		}, logger)
		logger.Debug().Str("model", cfg.AI.ChartModel).Msg("Inference client initialized")
	}

	if app.AI != nil {
		var quota analyzer.QuotaKeeper
		if app.Gate != nil {
			quota = app.Gate
		}
		var history analyzer.HistoryRecorder
		if app.Store != nil {
			history = app.Store
		}
		app.Analyzer = analyzer.New(app.AI, quota, history, analyzer.Options{
			Imaging: imaging.Options{
				MaxEdge:     cfg.Image.MaxEdge,
				JPEGQuality: cfg.Image.JPEGQuality,
				MaxSizeKB:   cfg.Image.MaxSizeKB,
			},
			Retry: utils.RetryConfig{
				MaxAttempts:   cfg.AI.RetryAttempts,
				InitialDelay:  cfg.AI.RetryDelay,
				MaxDelay:      10 * time.Second,
				BackoffFactor: cfg.AI.RetryFactor,
			},
		}, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "Chart Advisor - AI chart analysis CLI",
		Long: `Chart Advisor analyzes chart screenshots with an external AI model and
returns a structured technical reading: recommendation, confidence,
support/resistance levels and indicator summaries.

Use 'advisor help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			// Every invocation counts as a visit.
			if app.Store != nil && cmd.Name() != "stats" {
				if _, err := app.Store.IncrementVisits(); err != nil {
					app.Logger.Debug().Err(err).Msg("Visit counter update failed")
				}
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/chart-advisor)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addAuthCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addPlanCommands(rootCmd, app)
	addProfileCommands(rootCmd, app)
	addVoiceCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Chart Advisor v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.BaseDir()})
			} else {
				output.Println(app.Config.BaseDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("AI Configuration")
	output.Printf("  Chart Model:    %s\n", cfg.AI.ChartModel)
	output.Printf("  Chat Model:     %s\n", cfg.AI.ChatModel)
	output.Printf("  Speech Model:   %s\n", cfg.AI.SpeechModel)
	output.Printf("  Retry Attempts: %d\n", cfg.AI.RetryAttempts)
	output.Printf("  API Key Set:    %v\n", cfg.HasAPIKey())
	output.Println()

	output.Bold("Image Configuration")
	output.Printf("  Max Edge:       %d px\n", cfg.Image.MaxEdge)
	output.Printf("  JPEG Quality:   %d\n", cfg.Image.JPEGQuality)
	output.Printf("  Max Input Size: %d KB\n", cfg.Image.MaxSizeKB)
	output.Println()

	output.Bold("Voice Configuration")
	output.Printf("  Dialect:         %s\n", cfg.Voice.Dialect)
	output.Printf("  Final Silence:   %s\n", cfg.Voice.FinalSilence)
	output.Printf("  Interim Silence: %s\n", cfg.Voice.InterimSilence)
	output.Println()

	output.Bold("UI Configuration")
	output.Printf("  Theme:       %s\n", cfg.UI.Theme)
	output.Printf("  Blur Radius: %d\n", cfg.UI.BlurRadius)
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Store unavailable")
				return nil
			}

			visits, err := app.Store.GetVisits()
			if err != nil {
				return err
			}
			history, err := app.Store.GetHistory(cmd.Context(), 0)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"visits":          visits,
					"stored_analyses": len(history),
				})
			}
			output.Bold("Usage Statistics")
			output.Printf("  Visits:          %d\n", visits)
			output.Printf("  Stored Analyses: %d\n", len(history))
			return nil
		},
	}
}
