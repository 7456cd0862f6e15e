// Package stage defines the Handler interface shared by the three steps
// an audit stage runs in order: drawing the sample, measuring risk and
// updating status, and planning the next stage's sample sizes.
// Each step is a Handler so the audit driver can log, time, and recover
// from a failed step uniformly regardless of which one it is.
package stage
