package middleware

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis/v3"
)

// RateLimit allows max requests per client IP per window. A max <= 0
// disables limiting. storage may be nil for the in-process store.
func RateLimit(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many attempts. Please try again later.",
			})
		},
		Storage: storage,
	})
}

// NewRedisStorage creates limiter storage shared by every API instance.
// The underlying client panics when Redis is unreachable.
func NewRedisStorage(addr string) *redis.Storage {
	host, port := parseRedisAddr(addr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Database: 0,
		PoolSize: 10,
	})
}

func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
