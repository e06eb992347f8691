package middleware

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs each request as one JSON object per line on stdout.
func Logger() fiber.Handler {
	return LoggerWithWriter(os.Stdout, time.Local)
}

// LoggerWithWriter is Logger with an explicit sink and timezone, used by
// tests to capture output. Fields: ts, request_id, method, path, status,
// latency (milliseconds).
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	var mu sync.Mutex
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Collected after the handler ran to capture the final status.
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		entry := map[string]any{
			"ts":         time.Now().In(loc).Format(time.RFC3339Nano),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Microseconds()) / 1000.0,
		}
		mu.Lock()
		_ = enc.Encode(entry)
		mu.Unlock()

		return err
	}
}
