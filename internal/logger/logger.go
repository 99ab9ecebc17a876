package logger

import (
	"go.uber.org/zap"

	"quizzed/internal/config"
)

// New builds the application logger. Production uses the JSON encoder,
// anything else gets the human-readable development config.
func New(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
