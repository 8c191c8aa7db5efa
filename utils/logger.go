package utils

import (
	"go.uber.org/zap"
)

// Logger is the process-wide structured logger. zap's global is replaced so
// packages that cannot import utils (storage) can log through zap.S().
var Logger = newLogger()

func newLogger() *zap.SugaredLogger {
	logger := zap.Must(zap.NewProduction())
	zap.ReplaceGlobals(logger)
	return logger.Sugar()
}
