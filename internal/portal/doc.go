// Package portal is the server-rendered admin portal: login and signup,
// the events list, event responses and profile settings.
//
// Every request carries a portal session resolved from a signed cookie. The
// session's Store is hydrated by the session initializer before routing, and
// guard middleware decides which pages it may see. Pages render from embedded
// templates as full documents, or as #main patches for DataStar requests.
package portal
