// Package logger builds log/slog loggers for the portal.
//
// New returns a JSON or text logger with optional static attributes and
// context extractors; extractors run on every record so request-scoped values
// (request id, portal session id) show up without threading loggers through
// call sites:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "speakerdesk"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "login succeeded", logger.UserID(user.ID))
package logger
