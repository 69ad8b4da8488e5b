// Package assets defines the interface to the external photo store and the
// fetcher that resolves asset IDs to binary content. The store is a black
// box keyed by opaque IDs; authorization gating, MIME derivation, and the
// error taxonomy exposed to the HTTP layer live here.
package assets
