package protocol

import (
	"fmt"
	"io"
)

// Response status codes used by the bridge.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

// reasonPhrase returns the standard reason phrase for a status code.
func reasonPhrase(status int) string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "Not Found"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}

// WriteResponse frames a single HTTP response onto w: status line, headers,
// blank line, body. Every response advertises Connection: close and a
// permissive CORS origin. The head and body are two sequential writes; the
// body write is only attempted once the head write succeeded.
func WriteResponse(w io.Writer, status int, contentType string, body []byte) error {
	head := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\n"+
			"Content-Type: %s\r\n"+
			"Content-Length: %d\r\n"+
			"Access-Control-Allow-Origin: *\r\n"+
			"Connection: close\r\n"+
			"\r\n",
		status, reasonPhrase(status), contentType, len(body))

	if _, err := io.WriteString(w, head); err != nil {
		return fmt.Errorf("failed to write response head: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}
