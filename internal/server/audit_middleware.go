package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		skipRequestBody := strings.Contains(contentType, "multipart/form-data")
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   getHandlerName(r.URL.Path, r.Method),
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.UserID = username
		}

		entry.RequestID = pathEntityID(r.URL.Path, "requests")
		entry.ResponseID = pathEntityID(r.URL.Path, "responses")
		entry.TransactionID = pathEntityID(r.URL.Path, "transactions")

		var requestBody []byte
		if !skipRequestBody && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		// Verification codes must not end up in the audit stream.
		if strings.Contains(r.URL.Path, "-code") {
			entry.Request = ""
			entry.Response = ""
		}

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func pathEntityID(path, segment string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == segment && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func getHandlerName(path string, method string) string {
	switch {
	case strings.HasPrefix(path, "/requests"):
		switch {
		case strings.HasSuffix(path, "/close"):
			return "handleCloseRequest"
		case strings.HasSuffix(path, "/flag"):
			return "handleFlagRequest"
		case method == "POST":
			return "handleCreateRequest"
		case method == "GET" && path == "/requests":
			return "handleSearchRequests"
		case method == "GET":
			return "handleGetRequest"
		}
	case strings.HasPrefix(path, "/responses"):
		if method == "POST" {
			return "handleCreateResponse"
		}
		return "handleUpdateResponse"
	case strings.HasPrefix(path, "/transactions"):
		switch {
		case strings.HasSuffix(path, "/exchange-code"):
			return "handleGenerateExchangeCode"
		case strings.HasSuffix(path, "/exchange-code/enter"):
			return "handleEnterExchangeCode"
		case strings.HasSuffix(path, "/return-code"):
			return "handleGenerateReturnCode"
		case strings.HasSuffix(path, "/return-code/enter"):
			return "handleEnterReturnCode"
		case strings.HasSuffix(path, "/exchange-override"):
			return "handleCreateExchangeOverride"
		case strings.HasSuffix(path, "/exchange-override/respond"):
			return "handleRespondExchangeOverride"
		case strings.HasSuffix(path, "/return-override"):
			return "handleCreateReturnOverride"
		case strings.HasSuffix(path, "/return-override/respond"):
			return "handleRespondReturnOverride"
		case strings.HasSuffix(path, "/price"):
			return "handleVerifyPrice"
		case strings.HasSuffix(path, "/cancel"):
			return "handleCancelTransaction"
		case method == "GET":
			return "handleGetTransaction"
		}
	}

	return "unknown"
}
