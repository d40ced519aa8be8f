package client

import (
	"context"
	"log/slog"
	"time"
)

// LoggingTransport wraps next and logs every request using slog: its
// start, and then its completion with status and duration or its failure.
func LoggingTransport(next Transport, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}

	return TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		start := time.Now()

		logger.DebugContext(ctx, "request started",
			slog.String("path", req.Path),
			slog.Int("bytes", len(req.Body)),
		)

		resp, err := next.Do(ctx, req)
		duration := time.Since(start)

		switch {
		case err != nil:
			logger.ErrorContext(ctx, "request failed",
				slog.String("path", req.Path),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		case resp.Status >= 400:
			logger.WarnContext(ctx, "request completed",
				slog.String("path", req.Path),
				slog.Int("status", resp.Status),
				slog.Duration("duration", duration),
			)
		default:
			logger.InfoContext(ctx, "request completed",
				slog.String("path", req.Path),
				slog.Int("status", resp.Status),
				slog.Duration("duration", duration),
			)
		}

		return resp, err
	})
}
