// Package services implements the HTTP client for the Spotify saved-tracks library endpoints.
//
// # Library Client
//
// [LibraryClient] talks to two endpoints on a single account:
//   - GET /me/tracks : cursor-paginated listing, newest like first
//   - PUT and DELETE /me/tracks?ids=a%2Cb : batched add and remove
//
// Tokens are supplied pre-obtained; no OAuth flow is performed here.
// The client wraps its transport in an [oauth2.Transport] backed by a static token source,
// so every request carries an "Authorization: Bearer" header.
//
// # Error Handling
//
// Any status other than 200 yields an [*APIError] carrying the method, URL, status and response body.
// APIError unwraps to [shared.ErrAPIRequest] so callers can match with errors.Is.
// Requests are never retried; the caller decides whether to re-run.
package services
