package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/roomsplit/internal/rpc"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with the receipt or participant it addressed, its outcome and its duration.
// Client errors log at WARN, server faults at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := append([]slog.Attr{slog.String("procedure", req.Spec().Procedure)}, targetAttrs(req.Any())...)

			resp, err := next(ctx, req)

			attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			level, msg := slog.LevelInfo, "RPC ok"
			if err != nil {
				msg = "RPC error"
				var connectErr *connect.Error
				if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal {
					level = slog.LevelWarn
					attrs = append(attrs, slog.String("code", connectErr.Code().String()), slog.String("error", connectErr.Message()))
				} else {
					level = slog.LevelError
					attrs = append(attrs, slog.Any("error", err))
				}
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}

// targetAttrs names the receipt or participant a request message addresses.
func targetAttrs(msg any) []slog.Attr {
	var attrs []slog.Attr
	if m, ok := msg.(rpc.ReceiptScoped); ok && m.GetReceiptID() != "" {
		attrs = append(attrs, slog.String("receipt_id", m.GetReceiptID()))
	}
	if m, ok := msg.(rpc.ParticipantScoped); ok && m.GetParticipantID() != "" {
		attrs = append(attrs, slog.String("participant_id", m.GetParticipantID()))
	}
	return attrs
}
