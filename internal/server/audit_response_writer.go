package server

import (
	"bytes"
	"net/http"
)

// responseWriterWrapper records the status code and a copy of the body so the
// audit middleware can report what a negotiation endpoint actually returned.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	buffer     bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	// Handlers that never call WriteHeader implicitly answer 200.
	return &responseWriterWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.buffer.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) GetStatusCode() int {
	return w.statusCode
}

// GetBody returns the buffered response body. Code endpoints are redacted
// before this reaches the audit stream.
func (w *responseWriterWrapper) GetBody() []byte {
	return w.buffer.Bytes()
}
