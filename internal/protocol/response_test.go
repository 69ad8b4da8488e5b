package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteResponseFraming(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        []byte
		expected    string
	}{
		{
			name:        "liveness response",
			status:      StatusOK,
			contentType: "text/plain",
			body:        []byte("PhotosBridge is running"),
			expected: "HTTP/1.1 200 OK\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 23\r\n" +
				"Access-Control-Allow-Origin: *\r\n" +
				"Connection: close\r\n" +
				"\r\n" +
				"PhotosBridge is running",
		},
		{
			name:        "binary image body",
			status:      StatusOK,
			contentType: "image/png",
			body:        []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF},
			expected: "HTTP/1.1 200 OK\r\n" +
				"Content-Type: image/png\r\n" +
				"Content-Length: 6\r\n" +
				"Access-Control-Allow-Origin: *\r\n" +
				"Connection: close\r\n" +
				"\r\n" +
				"\x89PNG\x00\xff",
		},
		{
			name:        "not found",
			status:      StatusNotFound,
			contentType: "text/plain",
			body:        []byte("Image not found"),
			expected: "HTTP/1.1 404 Not Found\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 15\r\n" +
				"Access-Control-Allow-Origin: *\r\n" +
				"Connection: close\r\n" +
				"\r\n" +
				"Image not found",
		},
		{
			name:        "empty body still framed",
			status:      StatusForbidden,
			contentType: "text/plain",
			body:        nil,
			expected: "HTTP/1.1 403 Forbidden\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 0\r\n" +
				"Access-Control-Allow-Origin: *\r\n" +
				"Connection: close\r\n" +
				"\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteResponse(&buf, tt.status, tt.contentType, tt.body); err != nil {
				t.Fatalf("WriteResponse() unexpected error: %v", err)
			}
			if got := buf.String(); got != tt.expected {
				t.Errorf("WriteResponse() wrote:\n%q\nwant:\n%q", got, tt.expected)
			}
		})
	}
}

// failAfterWriter fails every write after the first n.
type failAfterWriter struct {
	writes int
	n      int
}

var errWriterBroken = errors.New("writer broken")

func (w *failAfterWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.n {
		return 0, errWriterBroken
	}
	return len(p), nil
}

func TestWriteResponseHeadFailureSkipsBody(t *testing.T) {
	w := &failAfterWriter{n: 0}

	err := WriteResponse(w, StatusOK, "text/plain", []byte("body"))
	if err == nil {
		t.Fatal("expected error from failed head write")
	}
	if !strings.Contains(err.Error(), "response head") {
		t.Errorf("error should name the head write, got: %v", err)
	}
	if w.writes != 1 {
		t.Errorf("body write attempted after head failure: %d writes", w.writes)
	}
}

func TestWriteResponseBodyFailure(t *testing.T) {
	w := &failAfterWriter{n: 1}

	err := WriteResponse(w, StatusOK, "text/plain", []byte("body"))
	if err == nil {
		t.Fatal("expected error from failed body write")
	}
	if !strings.Contains(err.Error(), "response body") {
		t.Errorf("error should name the body write, got: %v", err)
	}
}
