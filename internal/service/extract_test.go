package service

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBodyRedactsSensitiveFields(t *testing.T) {
	body := []byte(`{"password":"x","email":"a@b.com","token":"tok","nested":{"password":"keep"}}`)
	out := sanitizeBody(body)
	require.NotEmpty(t, out)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &data))

	assert.Equal(t, RedactionMarker, data["password"])
	assert.Equal(t, RedactionMarker, data["token"])
	assert.Equal(t, "a@b.com", data["email"])

	// Only top-level keys are matched; field presence is preserved.
	nested, ok := data["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "keep", nested["password"])
}

func TestSanitizeBodyAllSensitiveKeys(t *testing.T) {
	body := []byte(`{"password":"a","token":"b","secret":"c","apiKey":"d","refreshToken":"e","ok":1}`)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sanitizeBody(body)), &data))

	for _, key := range []string{"password", "token", "secret", "apiKey", "refreshToken"} {
		assert.Equal(t, RedactionMarker, data[key], "field %s not redacted", key)
	}
	assert.Equal(t, float64(1), data["ok"])
}

func TestSanitizeBodyEmptyAndInvalid(t *testing.T) {
	assert.Empty(t, sanitizeBody(nil))
	assert.Empty(t, sanitizeBody([]byte{}))
	assert.Empty(t, sanitizeBody([]byte("not-json")))
	assert.Empty(t, sanitizeBody([]byte(`{}`)))
	// Arrays are not object bodies.
	assert.Empty(t, sanitizeBody([]byte(`[1,2,3]`)))
}

func TestSerializeQueryRepeatedParams(t *testing.T) {
	assert.Empty(t, serializeQuery(nil))
	assert.JSONEq(t, `{"draft":"true"}`, serializeQuery(url.Values{"draft": {"true"}}))
	// Repeated parameters keep every value.
	assert.JSONEq(t, `{"tag":["a","b"],"page":"2"}`,
		serializeQuery(url.Values{"tag": {"a", "b"}, "page": {"2"}}))
}

func TestClientIPPrecedence(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	headers.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "203.0.113.7", clientIP(headers, "192.0.2.1:1234"))

	headers.Del("X-Forwarded-For")
	assert.Equal(t, "198.51.100.2", clientIP(headers, "192.0.2.1:1234"))

	headers.Del("X-Real-IP")
	assert.Equal(t, "192.0.2.1", clientIP(headers, "192.0.2.1:1234"))

	assert.Equal(t, "unknown", clientIP(http.Header{}, ""))
}

func TestExtractLogData(t *testing.T) {
	headers := http.Header{}
	headers.Set("User-Agent", "test-agent")

	info := RequestInfo{
		Method:      "POST",
		OriginalURL: "/api/posts?draft=true",
		Headers:     headers,
		RemoteAddr:  "192.0.2.9:4000",
		Body:        []byte(`{"title":"hi","password":"pw"}`),
		Query:       url.Values{"draft": {"true"}},
		Principal:   &Principal{UserID: "user-1", Role: "editor"},
	}

	entry := ExtractLogData(info, 201, 42, "")
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/api/posts?draft=true", entry.Path)
	assert.Equal(t, 201, entry.StatusCode)
	assert.Equal(t, int64(42), entry.ResponseTime)
	assert.Equal(t, "test-agent", entry.UserAgent)
	assert.Equal(t, "192.0.2.9", entry.IPAddress)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	assert.JSONEq(t, `{"title":"hi","password":"***REDACTED***"}`, entry.RequestBody)
	assert.JSONEq(t, `{"draft":"true"}`, entry.QueryParams)
	assert.Empty(t, entry.ErrorMessage)
}

func TestExtractLogDataAnonymousAndEmpty(t *testing.T) {
	entry := ExtractLogData(RequestInfo{
		Method:      "DELETE",
		OriginalURL: "/api/posts/1",
		Headers:     http.Header{},
	}, 500, 7, "boom")

	assert.Nil(t, entry.UserID)
	assert.Empty(t, entry.RequestBody, "empty body must be omitted, not serialized as {}")
	assert.Empty(t, entry.QueryParams)
	assert.Equal(t, "boom", entry.ErrorMessage)
	assert.Equal(t, "unknown", entry.IPAddress)
}
