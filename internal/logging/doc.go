// Package logging wraps log/slog with two handlers: a human-readable
// console handler for interactive runs and a JSON handler for
// machine-readable output, selected by config.LogFormat. It supplements
// slog.Logger with a small set of standardized field-name constants
// (FieldStageTime, FieldMID, ...) and context-scoped child loggers so a
// stage's logger automatically carries the election, stage, and
// measurement it is working on.
package logging
