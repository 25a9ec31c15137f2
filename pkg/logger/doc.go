// Package logger builds the slog loggers used by the OAuth client, the state
// stores and the oauthkit server.
//
// # Overview
//
//   - New writes JSON or text to stdout (or any io.Writer) at a configured level
//   - Context extractors add request-scoped attributes such as request IDs
//   - With a Sentry DSN, warnings and errors are forwarded to Sentry as well
//   - NewNope discards everything and is the default for library types
//
// # Usage
//
//	log := logger.New(logger.Config{Level: slog.LevelDebug, Format: logger.FormatText},
//		logger.FromContext(requestIDKey{}, "request_id"),
//	)
//
//	client, err := oauth.NewGoogleClient(cfg, oauth.WithLogger(log))
//
// Config carries env tags, so it can be filled by caarlos0/env:
//
//	LOG_LEVEL=debug LOG_FORMAT=text SENTRY_DSN=https://...
//
// If SENTRY_DSN is empty, or Sentry fails to initialize, logging continues
// to the output writer only. Call Flush before exiting to deliver buffered events.
package logger
