package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewCORSMiddleware() fiber.Handler
	NewRequestIDMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type Config struct {
	RateLimit   float64
	BurstSize   int
	CORSOrigins string
}

type middleware struct {
	rateLimitter        *rateLimiter
	cors                fiber.Handler
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, cfg Config) Middleware {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 50
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 100
	}

	return &middleware{
		rateLimitter:        newRateLimiter(rate.Limit(cfg.RateLimit), cfg.BurstSize),
		cors:                newCORSMiddleware(cfg.CORSOrigins),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) NewCORSMiddleware() fiber.Handler {
	return m.cors
}
