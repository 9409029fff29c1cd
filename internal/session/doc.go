// Package session implements the connection-role coordination core.
//
// One Session actor owns the connection registry, the role arbiter, and
// the state store. Commands arrive over a channel and handlers run to
// completion, so a single master mutates state at a time by construction.
// Controller connections compete for the master role through a token
// scheme with a reload grace period; display connections only ever view.
package session
