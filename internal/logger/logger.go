package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a named zap logger for the given environment. Development
// gets console encoding with debug level; everything else gets production
// JSON logging.
func NewNamed(env, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
