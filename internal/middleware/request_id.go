package middleware

import (
	contextPkg "MoodLingo/pkg/context"
	"MoodLingo/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"time"
)

const (
	RequestIDKey = "X-Request-ID"

	maxRequestIDLength = 128
)

// NewRequestIDMiddleware keeps a caller supplied request id or issues a
// ULID. The id is echoed in the response header and stored on the user
// context so services can log with it.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		c.SetUserContext(contextPkg.WithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}
