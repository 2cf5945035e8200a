// Package ui provides terminal feedback for long-running operations.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner provides a simple command-line spinner for long-running operations.
// On anything but a terminal it prints the message once instead.
type Spinner struct {
	w       io.Writer
	tty     bool
	chars   []string
	message string
	active  bool
	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a new spinner writing to w
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		tty:     isTerminal(w) && os.Getenv("NO_COLOR") == "",
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins spinning, showing feedback within 100ms
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true

	if !s.tty {
		fmt.Fprintf(s.w, "%s...\n", s.message)
		close(s.stopped)
		return
	}

	go s.spin()
}

func (s *Spinner) spin() {
	defer close(s.stopped)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			// Clear the spinner line
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", s.chars[i], s.message)
			s.mu.Unlock()
			i = (i + 1) % len(s.chars)
		}
	}
}

// Stop stops the spinner and optionally shows a final message
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	close(s.done)
	<-s.stopped

	if finalMessage != "" {
		fmt.Fprintln(s.w, finalMessage)
	}
}

// Update changes the spinner message while it's running
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// isTerminal checks if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShowSpinner runs fn while a spinner is shown on w.
func ShowSpinner(w io.Writer, message string, fn func() error) error {
	spinner := NewSpinner(w, message)
	spinner.Start()
	err := fn()
	if err != nil {
		spinner.Stop(fmt.Sprintf("✗ %s", message))
	} else {
		spinner.Stop("✓ Done")
	}
	return err
}
