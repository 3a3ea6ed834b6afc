package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New возвращает JSON-логгер для продакшена и консольный для development
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}
