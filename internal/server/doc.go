// Package server provides the client-side HTTP plumbing for Google sign-in.
//
// # Loopback listener
//
// Interactive consent sends the browser to Google, which redirects back to a local URL.
// [Listen] binds that address before the browser is opened and serves a [Router] until
// [Loopback.Shutdown]. Nothing here is reachable beyond the sign-in window.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses [http.ServeMux] with method patterns. [RequestLogger] logs each request at
// debug level.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes the authorization code flow. It validates the state parameter,
// exchanges the code (with the PKCE verifier passed as an exchange option) and publishes the
// token on a channel. It processes a single callback and rejects any replay.
package server
