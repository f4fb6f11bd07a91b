// Package records maps spreadsheet rows to [models.Measurement] values and back.
//
// An [Adapter] reads the whole configured range or appends one row, gating every call on a valid
// credential. It performs no network call when the gate fails. Remote authorization failures
// invalidate the session at once. Every error it returns matches either [shared.ErrAuthRequired]
// or [shared.ErrRemoteStore].
//
// Row layout, first row is a header and is skipped:
//
//	A date | B weight | C bmi | D fat | E muscle | F bone | G visceral | H calories | I age
//
// Numeric cells are read leniently: the longest numeric prefix is used, and anything else reads
// as 0.
//
// A [Collection] is the in-memory mirror of the sheet and a [Book] ties the two together for
// the CLI and TUI.
package records
