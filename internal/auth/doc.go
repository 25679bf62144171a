// package auth implements the Spotify credential lifecycle: authorization
// code, refresh token, and client credentials exchanges against the accounts
// token endpoint, durable persistence of the resulting credential, and lazy
// single-flight refresh shared by concurrent callers.
//
// The [Coordinator] is the only writer of the [CredentialStore]; API callers
// ask it for a usable bearer token and never touch token material directly.
package auth
