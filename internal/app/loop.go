package app

import (
	"context"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/markln/internal/logging"
)

// Run processes terminal events until the user quits or ctx is done. Each
// event is handled to completion, including the whole edit pipeline, before
// the next one is read.
func (app *Application) Run(ctx context.Context) error {
	app.screen.EnableMouse()
	app.draw()

	eventChan := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	for !app.shouldQuit {
		redraw := false
		select {
		case <-ctx.Done():
			app.log.Debug("context cancelled", logging.FieldError, ctx.Err())
			return ctx.Err()
		case ev := <-eventChan:
			redraw = app.handleEvent(ev)
		case <-sigContCh:
			redraw = app.resumeAfterStop()
		}
		if redraw && !app.shouldQuit {
			app.draw()
		}
	}
	return nil
}

// handleEvent returns whether the screen needs repainting.
func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !app.handleKey(ev) {
			app.shouldQuit = true
			return false
		}
		return true
	case *tcell.EventResize:
		app.screen.Sync()
		app.relayout()
		return true
	case *tcell.EventMouse:
		return app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
}
