// Package logging provides contextual logger constructors on top of the
// global zerolog logger configured by the application shell.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithSession returns a logger with interview session context.
func WithSession(sessionId, userId string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionId).
		Str("userId", userId).
		Logger()
}
