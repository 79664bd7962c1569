// Package cli provides the command-line interface for musicman.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kadajett/musicManager/internal/config"
	"github.com/Kadajett/musicManager/internal/logger"
	"github.com/Kadajett/musicManager/internal/service"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Loaded in PersistentPreRunE, shared by every subcommand
	cfg *config.Config

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by the main package at startup
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "musicman",
		Short: "musicman - dual-pane music library and device browser",
		Long: `musicman ` + Version + ` - Built: ` + BuildTime + `
Browse a local music library and mounted player devices, move and
combine entries, and run archived, verified transfers onto a device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logCfg := logger.Config{
				Level:  logger.ParseLevel(cfg.Log.Level),
				Format: logger.ParseFormat(cfg.Log.Format),
				Outputs: []logger.OutputConfig{
					{Type: logger.OutputStderr},
				},
			}
			if verbose {
				logCfg.Level = logger.LevelDebug
			}
			if cfg.Log.File != "" {
				logCfg.File = logger.FileConfig{
					Enabled:    true,
					Path:       config.ExpandPath(cfg.Log.File),
					MaxSizeMB:  cfg.Log.MaxSizeMB,
					MaxAgeDays: cfg.Log.MaxAgeDays,
					MaxBackups: cfg.Log.MaxBackups,
					Compress:   cfg.Log.Compress,
				}
			}
			if err := logger.Init(logCfg); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newTransferCmd())
	rootCmd.AddCommand(newLocationsCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newCombineCmd())

	return rootCmd
}

// Execute runs the CLI with signal-aware cancellation
func Execute() int {
	rootContext, cancelFunc = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(rootContext); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newManager builds the service manager from the loaded configuration
func newManager() (*service.Manager, error) {
	return service.NewManager(cfg)
}
