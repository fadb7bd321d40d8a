package middleware

import (
	"MoodLingo/pkg/log"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

const maxLoggedTextLength = 256

func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		if err != nil && status == fiber.StatusInternalServerError {
			return err
		}

		logFields := log.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"ip":         c.IP(),
			"host":       c.Hostname(),
			"user_agent": c.Get("User-Agent"),
			"referer":    c.Get("Referer"),
		}

		// Reading the body of a streamed response would drain the stream.
		if c.Response().IsBodyStream() {
			logFields["streaming"] = true
		} else {
			logFields["response_size"] = len(c.Response().Body())
		}

		if len(c.Request().Body()) > 0 {
			logFields["request_body"] = sanitizeRequestBody(string(c.Request().Body()))
		}

		if status >= 500 {
			log.Error(logFields, "Server error")
		} else if status >= 400 {
			log.Warn(logFields, "Client error")
		} else {
			log.Info(logFields, "Success")
		}

		return err
	}
}

func sanitizeRequestBody(body string) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal([]byte(body), &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	sensitiveFields := []string{
		"password", "token", "secret", "key", "api_key",
		"auth", "authorization", "credential",
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	if text, ok := jsonBody["text"].(string); ok && len(text) > maxLoggedTextLength {
		jsonBody["text"] = truncateUTF8(text, maxLoggedTextLength) + "...[truncated]"
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
