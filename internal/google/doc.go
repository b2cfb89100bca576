// Package google authorizes the assistant against the user's Google account.
//
// The first run performs the installed-app OAuth flow: a loopback listener
// receives the authorization code, which is exchanged with PKCE. The token
// is cached as JSON (GOOGLE_TOKEN_PATH) and refreshed transparently; every
// refreshed token is written back to the cache.
package google
