package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent names the subsystem emitting a log line.
	FieldComponent = "component"
	// FieldElectionDir is the election directory name under the elections root.
	FieldElectionDir = "election"
	// FieldStageTime is the monotone stage timestamp key.
	FieldStageTime = "stage_time"
	// FieldMID is the measurement id a log line concerns.
	FieldMID = "mid"
	// FieldCID is the contest id a log line concerns.
	FieldCID = "cid"
	// FieldPBCID is the paper-ballot collection id a log line concerns.
	FieldPBCID = "pbcid"
	// FieldCorrelationID is the per-stage request correlation id.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out.
	FieldAlert = "alert"
	// FieldEventType categorizes lifecycle events (stage_start, stage_complete, status,...).
	FieldEventType = "event_type"
	// FieldErrorKind captures the audit error taxonomy classification.
	FieldErrorKind = "error_kind"
)

type ctxKey int

const (
	ctxKeyElectionDir ctxKey = iota
	ctxKeyStageTime
	ctxKeyMID
	ctxKeyRequestID
)

// WithElectionDir attaches an election directory name to ctx for logging.
func WithElectionDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, ctxKeyElectionDir, dir)
}

// WithStageTime attaches a stage_time to ctx for logging.
func WithStageTime(ctx context.Context, stageTime string) context.Context {
	return context.WithValue(ctx, ctxKeyStageTime, stageTime)
}

// WithMID attaches a measurement id to ctx for logging.
func WithMID(ctx context.Context, mid string) context.Context {
	return context.WithValue(ctx, ctxKeyMID, mid)
}

// WithRequestID attaches a per-stage correlation id to ctx for logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if v, ok := ctx.Value(ctxKeyElectionDir).(string); ok && v != "" {
		fields = append(fields, slog.String(FieldElectionDir, v))
	}
	if v, ok := ctx.Value(ctxKeyStageTime).(string); ok && v != "" {
		fields = append(fields, slog.String(FieldStageTime, v))
	}
	if v, ok := ctx.Value(ctxKeyMID).(string); ok && v != "" {
		fields = append(fields, slog.String(FieldMID, v))
	}
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok && v != "" {
		fields = append(fields, slog.String(FieldCorrelationID, v))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
