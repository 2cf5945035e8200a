package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nishad/ffqf/internal/errors"
)

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Check if output is to terminal
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Apply color if terminal output and color enabled
func colorize(w io.Writer, color, text string) string {
	f, ok := w.(*os.File)
	if ok && isTerminal(f) && os.Getenv("NO_COLOR") == "" {
		return color + text + colorReset
	}
	return text
}

// Print error message in user-friendly format
func printError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(os.Stderr, colorRed, "✗"), msg)
}

// Print success message
func printSuccess(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "%s %s\n", colorize(w, colorGreen, "✓"), msg)
}

// Print warning message
func printWarning(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "%s %s\n", colorize(w, colorYellow, "⚠"), msg)
}

// reportedError marks an error that was already logged.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func reported(err error) error {
	return reportedError{err}
}

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// Helper function to read accessions from stdin, one per line. Blank lines
// and lines starting with # are ignored.
func readAccessionsFromReader(r io.Reader) ([]string, error) {
	accessions := make([]string, 0)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			accessions = append(accessions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return accessions, nil
}
