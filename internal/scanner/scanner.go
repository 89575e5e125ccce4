// Package scanner abstracts the scan input source. A Source delivers
// decoded code strings asynchronously, callback style; the shipped
// implementation reads newline-delimited codes from an io.Reader (a USB
// scanner in keyboard-wedge mode, or stdin during an interactive session).
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Handler receives one decoded code per scan.
type Handler func(code string)

// Source is an asynchronous scan input.
//
// Start while already running must cleanly stop and restart the source:
// a stuck scanner handle is a known failure mode of camera-based inputs,
// so re-acquisition has to be idempotent.
type Source interface {
	Start(ctx context.Context, h Handler) error
	Stop() error
}

// LineSource reads decoded codes line by line from an io.Reader.
type LineSource struct {
	r io.Reader

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLineSource creates a source over r. r is typically os.Stdin.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

// Start begins delivering scans to h from a background goroutine. Blank
// lines are skipped; a real scanner never emits an empty decode. If the
// source is already running it is stopped and restarted.
func (s *LineSource) Start(ctx context.Context, h Handler) error {
	if s.r == nil {
		return fmt.Errorf("scanner unavailable: no input source")
	}
	if err := s.Stop(); err != nil {
		return fmt.Errorf("restart scan source: %w", err)
	}

	s.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		sc := bufio.NewScanner(s.r)
		for sc.Scan() {
			if runCtx.Err() != nil {
				return
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			h(line)
		}
	}()

	return nil
}

// Stop deactivates the source. Safe to call when not running.
func (s *LineSource) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Done returns a channel closed when the current delivery goroutine has
// exited (input exhausted or source stopped). Returns a closed channel if
// the source was never started.
func (s *LineSource) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.done
}
