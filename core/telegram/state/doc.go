// Package state provides in-memory per-user session storage for bots and a
// mailbox that runs one user's updates in arrival order.
// It is domain-agnostic; bots choose the session type.
package state
