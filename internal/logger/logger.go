package logger

import (
	"go-cms/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the application logger based on the environment.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Important: Enable Caller to get Function Name
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return zap.New(baseLogger.Core(), zap.AddCaller()), nil
}
