package logger

import (
	"io"
	"log"
	"os"
)

// Log flags
const (
	LstdFlags     = log.LstdFlags
	Lmicroseconds = log.Lmicroseconds
)

// Logger wraps the standard log.Logger with a verbose tier and a warning
// prefix
type Logger struct {
	*log.Logger
	verbose bool
}

// New creates a new logger writing to stdout
func New() *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
	}
}

// SetVerbose enables or disables the verbose tier
func (l *Logger) SetVerbose(v bool) {
	l.verbose = v
}

// Verbosef logs only when the verbose tier is enabled
func (l *Logger) Verbosef(format string, v ...any) {
	if l.verbose {
		l.Logger.Printf(format, v...)
	}
}

// Warnf logs a non-fatal warning
func (l *Logger) Warnf(format string, v ...any) {
	l.Logger.Printf("WARNING: "+format, v...)
}

// SetFlags sets the output flags for the logger
func (l *Logger) SetFlags(flag int) {
	l.Logger.SetFlags(flag)
}
