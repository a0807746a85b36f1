package service

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/reqtrail/reqtrail/internal/model"
	"github.com/reqtrail/reqtrail/internal/pkg/logger"
)

// RedactionMarker replaces the value of every sensitive request body field
// before storage. The field itself stays present for diagnostics.
const RedactionMarker = "***REDACTED***"

// sensitiveFields 请求体中需要脱敏的字段
var sensitiveFields = []string{"password", "token", "secret", "apiKey", "refreshToken"}

// Principal is the authenticated identity an upstream auth layer attached
// to the request. The logging core reads it, it never authenticates.
type Principal struct {
	UserID string
	Role   string
}

// RequestInfo is a framework-independent snapshot of one request, carrying
// only the fields the extraction logic needs.
type RequestInfo struct {
	Method      string
	OriginalURL string // path plus raw query
	Headers     http.Header
	RemoteAddr  string
	Body        []byte
	Query       url.Values
	Principal   *Principal
}

// ExtractLogData builds a RequestLog from a completed request/response
// cycle. It is a pure transformation: any field that cannot be derived is
// left empty rather than producing an error.
func ExtractLogData(info RequestInfo, statusCode int, responseTime int64, errMsg string) *model.RequestLog {
	entry := &model.RequestLog{
		Method:       info.Method,
		Path:         info.OriginalURL,
		StatusCode:   statusCode,
		ResponseTime: responseTime,
		IPAddress:    clientIP(info.Headers, info.RemoteAddr),
		UserAgent:    info.Headers.Get("User-Agent"),
		RequestBody:  sanitizeBody(info.Body),
		QueryParams:  serializeQuery(info.Query),
		ErrorMessage: errMsg,
	}
	if info.Principal != nil && info.Principal.UserID != "" {
		userID := info.Principal.UserID
		entry.UserID = &userID
	}
	return entry
}

// sanitizeBody redacts sensitive field values in a JSON object body and
// returns the re-serialized result. Empty, non-object, or unserializable
// bodies yield an empty string; sanitization never fails the caller.
func sanitizeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Debug("request body is not a JSON object, omitting from log", "error", err)
		return ""
	}
	if len(data) == 0 {
		return ""
	}

	for _, field := range sensitiveFields {
		if _, ok := data[field]; ok {
			data[field] = RedactionMarker
		}
	}

	out, err := json.Marshal(data)
	if err != nil {
		logger.Warn("failed to serialize sanitized request body", "error", err)
		return ""
	}
	return string(out)
}

// serializeQuery stores single-valued parameters as strings and repeated
// parameters as arrays, so no value is lost.
func serializeQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	flat := make(map[string]interface{}, len(query))
	for key, values := range query {
		switch len(values) {
		case 0:
		case 1:
			flat[key] = values[0]
		default:
			flat[key] = values
		}
	}
	out, err := json.Marshal(flat)
	if err != nil {
		return ""
	}
	return string(out)
}

// clientIP derives the best-effort client address with proxy-header
// precedence: first forwarded-for hop, then real-ip, then the socket peer.
func clientIP(headers http.Header, remoteAddr string) string {
	if fwd := headers.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(headers.Get("X-Real-IP")); real != "" {
		return real
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return "unknown"
}
