package csvio

import "fmt"

// Warning is one accumulated problem found while validating a spec,
// manifest, or reported-data artefact. It is collected,
// not returned, so a whole file can be checked in one pass.
type Warning struct {
	File   string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.File, w.Detail)
}

// Warnings accumulates validation warnings across the whole pre-audit
// check pass. Abort reports true once any warning has been
// recorded: the stage loop must not begin while Abort() is true.
type Warnings struct {
	items []Warning
}

// Warnf records a formatted warning against file.
func (w *Warnings) Warnf(file, format string, args ...any) {
	w.items = append(w.items, Warning{File: file, Detail: fmt.Sprintf(format, args...)})
}

// Add records an already-built Warning.
func (w *Warnings) Add(warn Warning) {
	w.items = append(w.items, warn)
}

// Items returns the accumulated warnings in recording order.
func (w *Warnings) Items() []Warning {
	return w.items
}

// Abort reports whether the pre-audit validation pass found any problem
// during spec/reported validation, in which case the run must stop
// before the stage loop begins.
func (w *Warnings) Abort() bool {
	return len(w.items) > 0
}
