package protocol

import (
	"errors"
	"net/url"
	"strings"
)

// Parsing errors. ErrMalformedURL maps to 400; everything else means the
// connection is dropped without a response.
var (
	ErrEmptyRequest   = errors.New("empty request")
	ErrBadRequestLine = errors.New("malformed request line")
	ErrMalformedURL   = errors.New("malformed request URL")
)

// Request is the decoded first line of an HTTP request. It is derived once
// per connection and immutable afterwards.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
}

// ParseRequest extracts the request line from a raw read buffer. Only the
// bytes up to the first line terminator are considered; if no terminator
// arrived, the whole buffer is treated as the request line.
//
// The line must be of the form "METHOD SP TARGET ..." or ErrBadRequestLine
// is returned. Percent-decoding failures in the path or query surface as
// ErrMalformedURL so the caller can answer 400 instead of dropping the
// connection.
func ParseRequest(raw []byte) (*Request, error) {
	line := string(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return nil, ErrEmptyRequest
	}

	// "GET /image?id=42 HTTP/1.1" — the version token is ignored, some
	// clients omit it entirely.
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrBadRequestLine
	}

	target := parts[1]
	rawPath, rawQuery, _ := strings.Cut(target, "?")

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return &Request{Method: parts[0]}, ErrMalformedURL
	}

	query, err := parseQuery(rawQuery)
	if err != nil {
		return &Request{Method: parts[0], Path: path}, ErrMalformedURL
	}

	return &Request{
		Method: parts[0],
		Path:   path,
		Query:  query,
	}, nil
}

// parseQuery decodes "k=v&k2=v2" into a map. Duplicate keys keep the last
// occurrence; pair order is otherwise irrelevant.
func parseQuery(rawQuery string) (map[string]string, error) {
	params := make(map[string]string)
	if rawQuery == "" {
		return params, nil
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, ErrMalformedURL
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, ErrMalformedURL
		}
		params[key] = value
	}

	return params, nil
}
