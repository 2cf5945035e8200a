// Package logging builds the leveled log15 loggers used throughout ffqf.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/inconshreveable/log15"
)

// Levels lists the accepted --log-level values in increasing severity.
var Levels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// ParseLevel maps a command line level name to a log15 level.
func ParseLevel(name string) (log15.Lvl, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return log15.LvlDebug, nil
	case "INFO", "":
		return log15.LvlInfo, nil
	case "WARNING", "WARN":
		return log15.LvlWarn, nil
	case "ERROR":
		return log15.LvlError, nil
	case "CRITICAL", "CRIT":
		return log15.LvlCrit, nil
	}

	return log15.LvlInfo, fmt.Errorf("unknown log level %q (choose from %s)",
		name, strings.Join(Levels, ", "))
}

// New returns a logger writing to w, dropping records below lvl.
func New(w io.Writer, lvl log15.Lvl) log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, cliFormat())))

	return logger
}

// Discard returns a logger that drops every record.
func Discard() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	return logger
}

// cliFormat prints "[LEVEL] msg key=value ..." lines.
func cliFormat() log15.Format { //nolint:ireturn
	return log15.FormatFunc(func(r *log15.Record) []byte {
		b := &bytes.Buffer{}
		fmt.Fprintf(b, "[%s] %s", levelName(r.Lvl), r.Msg)

		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(b, " %v=%v", r.Ctx[i], r.Ctx[i+1])
		}

		b.WriteByte('\n')

		return b.Bytes()
	})
}

// levelName is the inverse of ParseLevel.
func levelName(lvl log15.Lvl) string {
	switch lvl {
	case log15.LvlDebug:
		return "DEBUG"
	case log15.LvlInfo:
		return "INFO"
	case log15.LvlWarn:
		return "WARNING"
	case log15.LvlError:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}
