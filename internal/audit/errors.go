package audit

import (
	"errors"
	"fmt"

	"bayesaudit/internal/model"
	"bayesaudit/internal/prng"
	"bayesaudit/internal/socialchoice"
)

// SpecError reports a malformed or inconsistent election spec, manifest,
// or reported-data artefact, collected as a warning during the pre-audit
// validation pass. A nonzero count of these before the stage loop
// begins is fatal.
type SpecError struct {
	Artefact string // e.g. "election-spec-contests.csv"
	Detail   string
}

func (e SpecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Artefact, e.Detail)
}

// IoError reports a missing required file or an unreadable directory.
// Unlike SpecError this is always fatal immediately, never merely
// collected as a warning.
type IoError struct {
	Path string
	Err  error
}

func (e IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e IoError) Unwrap() error { return e.Err }

// CsvShapeError reports a duplicate header or a missing required header,
// always fatal.
type CsvShapeError struct {
	File   string
	Detail string
}

func (e CsvShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Detail)
}

// ErrorKind classifies err into one of the audit error taxonomy names, for
// structured logging (internal/logging field FieldErrorKind). Unrecognized
// errors classify as "Unknown".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.As(err, &SpecError{}):
		return "SpecError"
	case errors.As(err, &prng.RngSeedError{}):
		return "RngSeedError"
	case errors.As(err, &IoError{}):
		return "IoError"
	case errors.As(err, &CsvShapeError{}):
		return "CsvShapeError"
	case errors.As(err, &socialchoice.NoValidOutcome{}):
		return "NoValidOutcome"
	case errors.As(err, &model.CycleWarning{}):
		return "CycleWarning"
	default:
		return "Unknown"
	}
}
