package telemetry

import (
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	current().Info(msg, toZapFields(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	current().Warn(msg, toZapFields(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	current().Error(msg, toZapFields(fields)...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = current().Sync()
}

// current builds the logger lazily so tests that swap os.Stdout see output.
func current() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stdout)
	}
	return logger
}

// Reset drops the cached logger; the next call rebuilds it against os.Stdout.
func Reset() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = nil
}

func newLogger(out zapcore.WriteSyncer) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(out), zapcore.InfoLevel)
	return zap.New(core)
}

func toZapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			out = append(out, zap.String(k, err.Error()))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
