// Package logging holds the assistant's slog setup and shared attribute helpers.
//
// The chat REPL shares the terminal with the user, so the default level is
// warn and output goes to stderr. Raise it with LOG_LEVEL=debug or --debug:
//
//	logger, levels := logging.New("warn", os.Stderr)
//	levels.Set(slog.LevelDebug)
//
// Attribute helpers keep key names consistent across packages:
//
//	logger.Info("tool call finished",
//	    logging.Tool("sendEmail"),
//	    logging.Status("success"))
//
// Email addresses are hashed with UserHash and tokens are reduced to their
// length with SanitizeToken before they reach a log line.
package logging
