package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reqtrail/reqtrail/internal/pkg/logger"
	"github.com/reqtrail/reqtrail/internal/service"
)

// RequestLoggerConfig selects which requests the interceptor records.
type RequestLoggerConfig struct {
	// TrackedMethods is the set of HTTP verbs to log. Requests with any
	// other method pass through untouched.
	TrackedMethods []string
	// ExcludedPaths are substrings matched against the original URL.
	// Matching requests are never logged regardless of method, so that
	// high-frequency ingestion endpoints cannot feed back into the log.
	ExcludedPaths []string
}

// RequestLogger observes completed requests and hands a structured record
// to the sink. Submission is fire-and-forget: the response is never
// delayed or altered, and any failure in here is swallowed after
// diagnostics.
func RequestLogger(svc *service.RequestLogService, cfg RequestLoggerConfig) gin.HandlerFunc {
	tracked := make(map[string]struct{}, len(cfg.TrackedMethods))
	for _, m := range cfg.TrackedMethods {
		tracked[strings.ToUpper(m)] = struct{}{}
	}

	return func(c *gin.Context) {
		originalURL := c.Request.URL.RequestURI()
		if !shouldLog(tracked, cfg.ExcludedPaths, c.Request.Method, originalURL) {
			c.Next()
			return
		}

		start := time.Now()

		// 读取请求体 (并写回以便后续 Bind 使用)
		var reqBodyBytes []byte
		if c.Request.Body != nil {
			reqBodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
		}

		// === 执行业务逻辑 ===
		c.Next()

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("request log extraction panicked", "panic", r,
						"method", c.Request.Method, "path", originalURL)
				}
			}()

			info := service.RequestInfo{
				Method:      c.Request.Method,
				OriginalURL: originalURL,
				Headers:     c.Request.Header,
				RemoteAddr:  c.Request.RemoteAddr,
				Body:        reqBodyBytes,
				Query:       c.Request.URL.Query(),
				Principal:   PrincipalFrom(c),
			}

			errMsg := ""
			if len(c.Errors) > 0 {
				errMsg = c.Errors.Last().Error()
			}

			entry := service.ExtractLogData(info, c.Writer.Status(),
				time.Since(start).Milliseconds(), errMsg)
			svc.Submit(entry)
		}()
	}
}

func shouldLog(tracked map[string]struct{}, excluded []string, method, originalURL string) bool {
	if _, ok := tracked[strings.ToUpper(method)]; !ok {
		return false
	}
	for _, p := range excluded {
		if p != "" && strings.Contains(originalURL, p) {
			return false
		}
	}
	return true
}
