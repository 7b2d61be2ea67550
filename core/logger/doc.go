// Package logger provides structured logging utilities built on Go's standard slog package.
//
// Loggers are created with New and functional options:
//
//	log := logger.New(
//		logger.WithProduction("memberportal"),
//		logger.WithJSONFormatter(),
//	)
//
//	log.Info("server starting", logger.Component("server"))
//
// Context values can be lifted into every record with WithContextValue or
// WithContextExtractors:
//
//	log := logger.New(
//		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//			id, ok := ctx.Value(requestIDKey{}).(string)
//			return logger.RequestID(id), ok
//		}),
//	)
//
// Attribute helpers return an empty slog.Attr for zero inputs (nil errors,
// empty ids) so they can be passed unconditionally.
package logger
