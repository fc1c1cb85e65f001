package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger discards everything until InitLogger runs.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a production logger writing to stderr.
// verbose lowers the level to debug.
func InitLogger(verbose bool) error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}
