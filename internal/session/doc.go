// Package session holds the portal's authentication state.
//
// Each browser is identified by a signed portal-session cookie. The Registry
// maps that id to a Store, which owns the bearer token, the cached user
// profile and the last authentication error. Only the token is durable: it
// is written to a TokenStorage and restored when a Store is rebuilt, while
// the user is always fetched again by the Initializer.
//
// Stores are safe for concurrent use. Results of user fetches are applied
// through a Ticket taken before the request, so a response that was issued
// before a logout, a new login or a newer fetch is discarded.
package session
