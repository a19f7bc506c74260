package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
)

// SignalContext returns a context cancelled by the first SIGINT or SIGTERM.
// A second signal within gracePeriod exits with defaults.ExitFailure, and
// after gracePeriod signals are no longer handled.
//
//	ctx, cancel := cli.SignalContext(5 * time.Second)
//	defer cancel()
func SignalContext(gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	w := &interrupts{
		grace:   gracePeriod,
		signals: ch,
		exit:    os.Exit,
		notice:  os.Stderr,
		release: func() { signal.Stop(ch) },
	}
	return w.watch()
}

// interrupts holds the seams SignalContext wires to the process.
type interrupts struct {
	grace   time.Duration
	signals <-chan os.Signal
	exit    func(int)
	notice  io.Writer
	release func()
}

func (w *interrupts) watch() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if w.release != nil {
			defer w.release()
		}
		var sig os.Signal
		select {
		case sig = <-w.signals:
		case <-ctx.Done():
			return
		}
		fmt.Fprintf(w.notice, "\n%s received, abandoning report (repeat to exit now)\n", sig)
		cancel()

		timer := time.NewTimer(w.grace)
		defer timer.Stop()
		select {
		case <-w.signals:
			w.exit(defaults.ExitFailure)
		case <-timer.C:
		}
	}()
	return ctx, cancel
}
