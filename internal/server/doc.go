// Package server implements the PhotosBridge TCP listener, the
// per-connection request handling pipeline, and the HTTP monitoring
// surface. One goroutine accepts connections; each accepted connection is
// handled on its own goroutine through a strict read, dispatch, respond
// sequence and is tracked in a registry until it closes.
package server
