package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tradeport-labs/gateway/types"
)

type ZerologLogger struct {
	log zerolog.Logger
}

var _ types.Logger = (*ZerologLogger)(nil)

// NewZerologLogger creates a wrapped zerolog logger
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{
		log: logger.With().Str("component", "gateway").Logger(),
	}
}

// NewDefaultLogger creates a zerolog logger writing to stderr, used when the
// caller does not supply a logger of its own.
func NewDefaultLogger() *ZerologLogger {
	return NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
}

func (l *ZerologLogger) Panic(args ...interface{}) {
	l.log.Panic().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Error(args ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Warn(args ...interface{}) {
	l.log.Warn().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Info(args ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Debug(args ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Trace(args ...interface{}) {
	l.log.Trace().Msg(fmt.Sprint(args...))
}

func (l *ZerologLogger) Panicw(msg string, keysAndValues ...interface{}) {
	l.log.Panic().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Tracew(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Panicf(format string, v ...interface{}) {
	l.log.Panic().Msgf(format, v...)
}

func (l *ZerologLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (l *ZerologLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l *ZerologLogger) Infof(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l *ZerologLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l *ZerologLogger) Tracef(format string, v ...interface{}) {
	l.log.Trace().Msgf(format, v...)
}
