package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process-wide logger. JSON production output by default,
// human-readable console output when LOG_MODE=dev.
func New() *zap.Logger {
	if os.Getenv("LOG_MODE") == "dev" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
