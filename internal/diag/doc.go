// Package diag defines the diagnostic model shared by the compiler phases.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form (INPxxxx for input decoding, SUGxxxx for sugared-value
// resolution, EMTxxxx for the emitter), a short Message, the Primary span and
// optional Notes. Sugared-value failures carry the candidate overload
// signatures as notes.
//
// Phases report through a Reporter; BagReporter collects into a Bag, which
// supports limits, sorting and deduplication. Rendering lives in
// internal/diagfmt.
package diag
