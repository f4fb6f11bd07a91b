// Package session owns the Google access token for the lifetime of the process.
//
// A [Manager] holds one opaque bearer token and the time it is assumed to expire. The expiry is
// not the provider's: it is the acquisition time plus a fixed renewal buffer, so renewal happens
// before Google starts rejecting the token. The pair is persisted through a [Store] so a restart
// inside the buffer keeps the user signed in.
//
// Lifecycle:
//
//	Unauthenticated --SignIn--> Refreshing --ok--> Valid --buffer elapses--> Expired
//	       ^                        |                |                          |
//	       +-------- failure -------+                +------ EnsureValid -------+
//	       +---- SignOut / OnRemoteAuthFailure ------+
//
// Remote callers gate on [Manager.EnsureValid], which renews silently and never shows a consent
// screen. Only [Manager.SignIn] may escalate to the interactive flow.
//
// The token never leaves the package except through [TokenSink.SetToken], which hands it to the
// store client.
package session
