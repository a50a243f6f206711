package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/render"
)

func newTOCCommand(opts *globalOptions) *cobra.Command {
	var slugs bool

	cmd := &cobra.Command{
		Use:   "toc FILE",
		Short: "Print the heading outline of a markdown file",
		Args:  cobra.ExactArgs(1),
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
			styles := NewStyles(out, IsColorEnabled(opts.color, out))
			eng := newEngine(logging.FromContext(cmd.Context()), text, cfg, render.DefaultWidth)
			for _, entry := range eng.TOC() {
				line := strings.Repeat("  ", entry.Level-1) + styles.Heading.Render(entry.Text)
				if slugs {
					line += "  " + styles.Dim.Render("#"+entry.Slug)
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&slugs, "slugs", false, "show the anchor slug of each heading")

	return cmd
}
