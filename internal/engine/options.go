package engine

import (
	"github.com/charmbracelet/log"

	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithParseOptions sets the block scanner options.
func WithParseOptions(opts markdown.Options) Option {
	return func(e *Engine) {
		e.parseOpts = opts
	}
}

// WithRenderOptions sets the preview renderer options.
func WithRenderOptions(opts render.Options) Option {
	return func(e *Engine) {
		e.renderOpts = opts
	}
}

// WithMode sets the initial sync mode.
func WithMode(m syncview.Mode) Option {
	return func(e *Engine) {
		e.initMode = m
	}
}

// WithAutoPreview controls whether edits re-render the preview immediately.
// When off, rendering waits for RefreshPreview.
func WithAutoPreview(on bool) Option {
	return func(e *Engine) {
		e.autoPreview = on
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}
