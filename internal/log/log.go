// Package log is a thin structured-logging facade over zerolog.
//
// Call sites use variadic key-value pairs:
//
//	log.Info("materialized series", "series_id", id, "count", len(items))
//	log.Error("audit append failed", err, "owner", ownerID)
package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelError = zerolog.ErrorLevel
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		out := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
}

// SetLevel adjusts the minimum emitted level.
func SetLevel(l Level) {
	initLogger()
	logger = logger.Level(l)
}

func Debug(msg string, kv ...any) {
	initLogger()
	applyKVs(logger.Debug(), kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	applyKVs(logger.Info(), kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	applyKVs(logger.Error().Err(err), kv).Msg(msg)
}

// applyKVs attaches key-value pairs to an event. Keys must be strings;
// a trailing unpaired value is ignored.
func applyKVs(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}
