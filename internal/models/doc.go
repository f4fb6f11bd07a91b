// Package models defines the domain entities of the inbody body-composition tracker.
//
// The package contains:
//
//   - [Measurement] : One row of the spreadsheet, a dated body-composition reading
//   - [Metric] : Display metadata (label, color, placeholder) for each numeric column
//   - [Profile] : The signed-in Google identity
//
// A [Measurement] is identified only by its position in the sheet. It is created by user input,
// appended remotely and mirrored locally. It is never updated or deleted.
package models
