package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	bucket    map[string]*visitor
	rate      rate.Limit
	burstSize int
	mutex     *sync.RWMutex

	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*visitor),
		rate:      reqRate,
		burstSize: burstSize,
		mutex:     &sync.RWMutex{},
		now:       time.Now,
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.sweep(now)
	}

	v, exist := r.bucket[ip]
	if !exist {
		v = &visitor{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.bucket[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}

// sweep forgets clients idle for a full interval whose bucket has refilled,
// so a fresh limiter behaves exactly like the evicted one.
func (r *rateLimiter) sweep(now time.Time) {
	for ip, v := range r.bucket {
		if now.Sub(v.lastSeen) < sweepInterval {
			continue
		}
		if v.limiter.TokensAt(now) >= float64(r.burstSize) {
			delete(r.bucket, ip)
		}
	}
	r.lastSweep = now
}

func (r *rateLimiter) size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.bucket)
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	limiter := m.rateLimitter.GetLimiterFrom(clientIP)

	if !limiter.Allow() {
		m.log.WithFields(logrus.Fields{
			"ip":         clientIP,
			"path":       ctx.Path(),
			"request_id": m.GetRequestID(ctx),
		}).Warn("Too many requests")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests",
		})
	}

	return ctx.Next()
}
