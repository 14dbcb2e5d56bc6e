package server

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultDocument is served for a request of "/".
const DefaultDocument = "index.html"

var errBadRequest = errors.New("bad request")

/*
parseRequestLine extracts the cache key from an HTTP request line.

Only GET is served. The target must be origin-form ("/path"); the query
string is ignored and percent-escapes are decoded. The returned key has no
leading slash.
*/
func parseRequestLine(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("%w: %q", errBadRequest, line)
	}

	method, target := fields[0], fields[1]
	if method != "GET" {
		return "", fmt.Errorf("%w: method %q", errBadRequest, method)
	}
	if len(fields) > 2 && !strings.HasPrefix(fields[2], "HTTP/") {
		return "", fmt.Errorf("%w: protocol %q", errBadRequest, fields[2])
	}
	if !strings.HasPrefix(target, "/") {
		return "", fmt.Errorf("%w: target %q", errBadRequest, target)
	}

	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	path, err := url.PathUnescape(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}

	key := strings.TrimPrefix(path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		key += DefaultDocument
	}
	return key, nil
}
