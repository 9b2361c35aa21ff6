// Package logger builds the zap logger used by gemchat. Logs go to a
// separate writer (stderr in practice) so they never interleave with the
// conversation on stdout.
package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w. Debug enables debug-level
// entries; otherwise only info and above are written.
func New(w io.Writer, debug bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	opts := []zap.Option{}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}
