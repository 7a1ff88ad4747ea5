package app

import (
	"strings"

	"github.com/pulsefeed/backend/pkg/logger"
)

const defaultLogLevel = "info"

// ConfigureLogging initialises the global logger from the server config,
// defaulting to info when no level is set.
func ConfigureLogging(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = defaultLogLevel
	}
	return logger.Init(level)
}
