// Package logging configures the zerolog loggers used by the console.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the TUI log file inside the config directory.
const FileName = "tekus.log"

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// New returns a timestamped logger writing JSON lines to w.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := ParseLevel(level)
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if err != nil {
		l.Warn().Err(err).Msg("defaulting to info")
	}
	return l
}

// NewConsole returns a human readable logger for command output.
func NewConsole(level string, w io.Writer) zerolog.Logger {
	return New(level, zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}

// OpenFile opens the log file under dir for appending. The TUI owns the
// terminal, so its logs go here.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
