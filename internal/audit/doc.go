// Package audit implements the stage loop: the driver that, once
// per stage, draws the sample, estimates risk and updates
// measurement/election status, and plans the next stage, all in memory.
// Reading audited votes and writing stage outputs are left to the caller;
// this package supplies the saved-state snapshot format and its read and
// write helpers. It also defines the error taxonomy raised across the
// engine.
package audit
