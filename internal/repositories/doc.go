// Package repositories implements SQLite persistence for the little local state inbody keeps.
//
// Measurements live only in the spreadsheet. The database holds the session slot: a key/value
// table with the access token, its assumed expiry and the provider's refresh token.
//
// Key Implementations:
//   - [SessionRepository] : key/value access to the session_slot table, plus the credential pair
//     read and written as a unit
//
// Multi-key writes and deletes run inside a single transaction through a shared transaction helper so the token and its
// expiry never disagree on disk.
package repositories
