package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init replaces the global zap logger with one at the given level and format.
// If w is nil, os.Stderr is used. Format must be "console" or "json".
func Init(level, format string, w ...io.Writer) error {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), lvl)
	zap.ReplaceGlobals(zap.New(core))
	return nil
}

// New returns a logger with a "component" field for module-scoped logging.
// Before Init it is a no-op logger.
func New(component string) *zap.Logger {
	return zap.L().With(zap.String("component", component))
}

// Sync flushes the global logger; errors from syncing stderr are ignored
func Sync() {
	_ = zap.L().Sync()
}
