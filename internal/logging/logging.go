// Package logging builds the zap logger used for the submission log.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smileynet/contactform/internal/config"
	"github.com/smileynet/contactform/internal/form"
)

// New builds a JSON production logger from cfg. With no file configured
// the logger writes to stderr, unless quiet is set (the terminal is owned
// by the TUI), in which case a no-op logger is returned.
func New(cfg config.Logging, quiet bool) (*zap.Logger, error) {
	if cfg.File == "" && quiet {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: building logger: %w", err)
	}
	return logger, nil
}

// SubmitHook returns a form.SubmitHook that records accepted submissions.
// Contact details are logged at debug level only.
func SubmitHook(logger *zap.Logger) form.SubmitHook {
	return func(s form.Submission) {
		logger.Info("form submitted",
			zap.String("id", s.ID),
			zap.String("service", s.Values[form.Service]),
			zap.Time("submitted_at", s.SubmittedAt),
		)
		logger.Debug("submission details",
			zap.String("id", s.ID),
			zap.String("first_name", s.Values[form.FirstName]),
			zap.String("last_name", s.Values[form.LastName]),
			zap.String("email", s.Values[form.Email]),
			zap.String("phone", s.Values[form.Phone]),
			zap.String("location", s.Values[form.Location]),
		)
	}
}
