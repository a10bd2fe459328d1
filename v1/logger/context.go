package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// traceFields extracts trace and span ids from the context so log entries
// can be correlated with exported spans. Without an active span it returns
// the fields unchanged.
func (l *Logger) traceFields(ctx context.Context, err error, fields ...map[string]interface{}) []zap.Field {
	zapFields := l.convertToZapFields(err, fields...)

	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.IsValid() {
		zapFields = append(zapFields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return zapFields
}

// InfoWithContext logs an informational message, correlated with the trace
// carried by ctx when one is active.
func (l *Logger) InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.traceFields(ctx, err, fields...)...)
}

// DebugWithContext logs a debug-level message with trace correlation.
func (l *Logger) DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.traceFields(ctx, err, fields...)...)
}

// WarnWithContext logs a warning with trace correlation.
func (l *Logger) WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.traceFields(ctx, err, fields...)...)
}

// ErrorWithContext logs an error with trace correlation.
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.traceFields(ctx, err, fields...)...)
}
