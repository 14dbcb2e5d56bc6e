package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"
)

// contentType picks a MIME type from the file extension, defaulting to text/html.
func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "text/html"
}

// writeOK sends a 200 header block followed by body and returns the body bytes written.
func writeOK(w io.Writer, key string, body []byte, now time.Time) (int64, error) {
	_, err := fmt.Fprintf(w,
		"HTTP/1.1 200 OK\r\nDate: %s\r\nContent-Length: %d\r\nConnection: close\r\nContent-Type: %s\r\n\r\n",
		now.UTC().Format(http.TimeFormat), len(body), contentType(key))
	if err != nil {
		return 0, err
	}

	n, err := w.Write(body)
	return int64(n), err
}

// writeStatus sends a body-less response such as "404 Not Found".
func writeStatus(w io.Writer, code int) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\nContent-Length: 0\r\nConnection: close\r\n\r\n",
		code, http.StatusText(code))
	return err
}
