// Package ui implements the inbody dashboard using bubbletea's Elm architecture.
//
// The dashboard has two views:
//  1. [DashboardView] : the latest measurements in a table beside one colored sparkline per metric
//  2. [FormView] : a form for a new measurement, dated today and prefilled from the latest record
//
// The [Model] drives a [Session] and a [Records] book; it never talks to Google directly. Every
// remote call runs as a tea.Cmd, with a spinner shown until its message arrives. The header shows
// the session state, the signed-in profile and the record count.
//
// Keys: a (add), r (reload), l (sign in), o (sign out), ? (help), q (quit). Inside the form, tab and
// shift+tab move between fields, enter saves and esc cancels.
package ui
