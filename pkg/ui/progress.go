package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stages reports fetch stages as they start. Each finished stage gets a
// line with its duration. On a terminal the running stage is animated
// in place; elsewhere it is printed once.
//
//	st := ui.NewStages(os.Stderr)
//	opts.Progress = st.Start
//	defer st.Stop()
type Stages struct {
	w       io.Writer
	live    bool
	spinner Spinner
	now     func() time.Time

	mu      sync.Mutex
	current string
	began   time.Time
	done    []string
	width   int // of the last live line

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewStages returns a reporter writing to w. Nothing is animated when w
// is not a terminal or the UI is silent.
func NewStages(w io.Writer) *Stages {
	s := &Stages{
		w:       w,
		live:    IsTerminal(w) && !IsSilent(),
		spinner: DefaultSpinner(w),
		now:     time.Now,
	}
	if s.live {
		s.stop = make(chan struct{})
		s.wg.Add(1)
		go s.animate(s.stop)
	}
	return s
}

func (s *Stages) animate(stop <-chan struct{}) {
	defer s.wg.Done()
	t := time.NewTicker(s.spinner.Interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			if s.current != "" {
				s.redraw()
			}
			s.mu.Unlock()
		}
	}
}

// redraw rewrites the live line. Callers hold mu.
func (s *Stages) redraw() {
	elapsed := s.now().Sub(s.began)
	line := fmt.Sprintf("  %s %s (%s)", SpinnerStyle.Render(s.spinner.Frame(elapsed)), s.current, formatDuration(elapsed))
	pad := max(0, s.width-len(line))
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = len(line)
}

func (s *Stages) clear() {
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// finish closes the running stage. Callers hold mu.
func (s *Stages) finish() {
	if s.current == "" {
		return
	}
	took := s.now().Sub(s.began)
	if s.live {
		s.clear()
	}
	if !IsSilent() {
		fmt.Fprintf(s.w, "  %s %s %s\n", PassStyle.Render("[+]"), s.current, StatLabelStyle.Render("("+formatDuration(took)+")"))
	}
	s.done = append(s.done, s.current)
	s.current = ""
}

// Start ends the running stage, if any, and begins stage. It matches
// the sonar.FetchOptions.Progress callback.
func (s *Stages) Start(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish()
	s.current = stage
	s.began = s.now()
	if s.live {
		s.redraw()
	}
}

// Stop ends the running stage and the animation. It is safe to call more
// than once.
func (s *Stages) Stop() {
	s.mu.Lock()
	s.finish()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
		s.wg.Wait()
	}
}

// Done returns the finished stages in order.
func (s *Stages) Done() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.done...)
}

// formatDuration shows sub-second durations in milliseconds.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}
