// Package status tracks the server lifecycle state machine and the bounded
// event log consumed by the status window. It is the only surface the core
// exposes to the presentation layer; rendering is someone else's problem.
package status
