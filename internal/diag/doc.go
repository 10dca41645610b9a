// Package diag defines the diagnostic model shared by the loom pipeline.
//
// # Purpose
//
//   - SyntaxError is the single failure kind of the lowering pass. It carries a
//     stable Code, a source.Location (origin, line, column) and a short
//     human-oriented message. Lowering returns it up the call chain; nothing in
//     the pass recovers from it, so the first one aborts the compilation unit.
//   - Diagnostic, Bag and Reporter let the driver collect the outcome of many
//     independent units (one per file) without coupling to rendering.
//
// # Scope
//
// Package diag performs no formatting and no IO. Rendering lives in
// internal/diagfmt, which also owns the sink that prints a SyntaxError as a
// kind/message line followed by a location-derived trace.
//
// # Codes
//
// Codes are grouped by thousands: SYN2xxx for syntax violations, IO4xxx for
// loading problems, OBS6xxx for observability records. Code.ID renders the
// stable identifier, Code.Title a one-line description.
package diag
