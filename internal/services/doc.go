// Package services implements the two Google integrations behind inbody's interfaces.
//
// # Identity
//
// [GoogleIdentity] implements session.IdentityProvider with golang.org/x/oauth2.
// Interactive requests open the browser on Google's consent page (PKCE, offline access,
// prompt=consent) and wait for the redirect on a loopback [server.Loopback]. Silent requests
// exchange the stored refresh token. A refresh token Google reports as invalid_grant is forgotten
// and the request fails with [shared.ErrConsentRequired]. Revocation and userinfo are plain HTTP
// calls to Google's documented endpoints.
//
// # Spreadsheet
//
// [SheetsClient] implements records.Client and session.TokenSink over
// google.golang.org/api/sheets/v4. Its HTTP stack is:
//
//	oauth2.Transport (bearer from SetToken) -> throttledTransport (x/time/rate) -> base transport
//
// With no token set, requests fail locally with [shared.ErrNotAuthenticated]. API errors are
// returned as *googleapi.Error so the records adapter can recognise 401 and 403.
package services
