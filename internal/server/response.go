package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/eleventy-go/devserver/internal/inject"
)

// responseBuffer decorates an http.ResponseWriter, buffering the status
// and body until the pipeline finishes. Finalize applies the reload-script
// injection to HTML bodies, so middleware and the built-in handler can
// both write plain content without coordinating.
type responseBuffer struct {
	w           http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	finalized   bool
}

func newResponseBuffer(w http.ResponseWriter) *responseBuffer {
	return &responseBuffer{w: w}
}

// Header returns the underlying header map.
func (b *responseBuffer) Header() http.Header {
	return b.w.Header()
}

// WriteHeader records the status; only the first call wins, matching
// net/http semantics.
func (b *responseBuffer) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

// Write buffers body bytes.
func (b *responseBuffer) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.buf.Write(p)
}

// Status returns the recorded status code, defaulting to 200.
func (b *responseBuffer) Status() int {
	if !b.wroteHeader {
		return http.StatusOK
	}
	return b.status
}

// finalize flushes the buffered response to the real writer, injecting
// the reload-client script into HTML bodies when enabled.
func (b *responseBuffer) finalize(injectScript bool, scriptTag string) {
	if b.finalized {
		return
	}
	b.finalized = true

	body := b.buf.Bytes()
	if injectScript && isHTML(b.Header().Get("Content-Type")) {
		body = []byte(inject.Script(string(body), scriptTag))
	}

	b.Header().Set("Content-Length", strconv.Itoa(len(body)))
	b.w.WriteHeader(b.Status())
	if len(body) > 0 {
		b.w.Write(body)
	}
}

func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html")
}
