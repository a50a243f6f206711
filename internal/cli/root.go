// Package cli provides the Cobra command structure for markln.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/markln/internal/app"
	"github.com/kk-code-lab/markln/internal/config"
	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/syncview"
)

const logFilePermissions = 0o600

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	debug      bool
	configPath string
	color      string
}

// newScreen is swapped out in tests.
var newScreen = tcell.NewScreen

// NewRootCommand creates the root markln command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &globalOptions{}
	var (
		theme   string
		mode    string
		logFile string
		resume  bool
	)

	rootCmd := &cobra.Command{
		Use:   "markln [FILE]",
		Short: "A terminal markdown editor with a live preview",
		Long: `markln is a terminal markdown editor with a side-by-side preview.

The preview is re-rendered as you type and scrolls with the cursor. Use
Ctrl+T to switch between the synced split, the editor alone and the preview
alone, and Ctrl+L for the list of key bindings.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if opts.debug {
				level = "debug"
				logging.SetLevel(level)
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if theme != "" {
				if !config.IsKnownTheme(theme) {
					return fmt.Errorf("unknown theme %q", theme)
				}
				cfg.Theme = theme
			}
			if mode != "" {
				m, err := syncview.ParseMode(mode)
				if err != nil {
					return err
				}
				cfg.WindowMode = m.String()
			}

			path := ""
			switch {
			case len(args) == 1:
				path = args[0]
			case resume:
				path = cfg.LastFile
			}
			return runEditor(cmd.Context(), cfg, cfgPath, path, logFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.color, "color", "auto",
		"colorize output: auto, always, never")

	// Editor flags.
	rootCmd.Flags().StringVar(&theme, "theme", "", "color theme: dark, light, mono")
	rootCmd.Flags().StringVar(&mode, "mode", "", "initial view: synced, editor, preview")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file while the editor runs")
	rootCmd.Flags().BoolVarP(&resume, "resume", "r", false, "reopen the last edited file")

	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newTOCCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// loadConfig reads the configuration file named by --config, or the default
// location. The returned path is where the editor saves its state; it is
// empty when no location could be determined.
func loadConfig(opts *globalOptions) (config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logging.Default().Debug("no config location", logging.FieldError, err)
		} else {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, "", fmt.Errorf("load config: %w", err)
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// runEditor opens the full-screen editor. Logs go to logFile when given and
// are dropped otherwise, since the terminal belongs to the editor.
func runEditor(ctx context.Context, cfg config.Config, cfgPath, path, logFile string) error {
	logger := logging.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewWithWriter(f, cfg.LogLevel)
	}

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	editor, err := app.New(screen, app.Options{
		Path:       path,
		ConfigPath: cfgPath,
		Config:     cfg,
		Logger:     logger,
	})
	if err != nil {
		screen.Fini()
		return err
	}

	runErr := editor.Run(ctx)
	if err := editor.Close(); err != nil && runErr == nil {
		logger.Warn("closing editor", logging.FieldError, err)
	}
	logEditorExit(logger, runErr)
	return runErr
}

func logEditorExit(logger *log.Logger, err error) {
	if err != nil {
		logger.Error("editor stopped", logging.FieldError, err)
		return
	}
	logger.Info("editor closed")
}
