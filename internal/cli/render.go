package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/markln/internal/config"
	"github.com/kk-code-lab/markln/internal/engine"
	"github.com/kk-code-lab/markln/internal/fs"
	"github.com/kk-code-lab/markln/internal/logging"
)

func newRenderCommand(opts *globalOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print the rendered preview of a markdown file",
		Long: `Print the preview of FILE as the editor shows it, wrapped to the
terminal width or to --width. Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColorMode(opts.color); err != nil {
				return err
			}
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			text, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if width <= 0 {
				width = terminalWidth(out)
			}
			eng := newEngine(logging.FromContext(cmd.Context()), text, cfg, width)
			styles := NewStyles(out, IsColorEnabled(opts.color, out))
			for _, line := range eng.Index().Lines() {
				if _, err := fmt.Fprintln(out, styles.Line(line)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0, "wrap width in columns (default: terminal width)")

	return cmd
}

// readDocument loads path, or standard input for "-". Unlike the editor,
// a missing file is an error here.
func readDocument(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text, _, err := fs.DecodeText(content)
		return text, err
	}
	text, f, err := fs.Load(path)
	if err != nil {
		return "", err
	}
	if !f.Exists {
		return "", fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return text, nil
}

func newEngine(logger *log.Logger, text string, cfg config.Config, width int) *engine.Engine {
	return engine.New(text,
		engine.WithParseOptions(cfg.ParseOptions()),
		engine.WithRenderOptions(cfg.RenderOptions(width)),
		engine.WithLogger(logger),
	)
}
