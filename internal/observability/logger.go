package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger tags the global logger with app and, when set, the namespace
// the daemon serves. The writer and level come from the logging profile.
func InitLogger(app, namespace string) zerolog.Logger {
	ctx := log.Logger.With().Str("app", app)
	if namespace != "" {
		ctx = ctx.Str("ns", namespace)
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}
