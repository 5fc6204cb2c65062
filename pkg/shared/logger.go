package shared

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper to allow DI/testing.
type Logger interface {
	Printf(string, ...any)
	Fatalf(string, ...any)
}

type zlLogger struct{ zl zerolog.Logger }

// NewLogger returns a zerolog-backed logger tagged with the service name.
func NewLogger(svc string) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("svc", svc).Logger()
	return &zlLogger{zl: zl}
}

func (l *zlLogger) Printf(format string, args ...any) { l.zl.Info().Msgf(format, args...) }
func (l *zlLogger) Fatalf(format string, args ...any) { l.zl.Fatal().Msgf(format, args...) }
