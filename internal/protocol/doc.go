// Package protocol implements the minimal HTTP surface PhotosBridge speaks:
// parsing the request line out of a single bounded read, and framing raw
// HTTP responses onto the wire. Only the first line of a request matters;
// headers and bodies are never read.
package protocol
