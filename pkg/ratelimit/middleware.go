package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware enforces per-IP limits. When Redis is unreachable requests are let through.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			logger.GetDefault().Warn("rate limit check failed",
				slog.String("ip", clientIP),
				slog.String("type", string(limitType)),
				slog.Any("error", err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded", nil, response.ErrorBody{
				Code: "RATE_LIMITED",
				Details: map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType maps a gin route template to a limit class
func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	case strings.Contains(path, "/tickets"),
		strings.Contains(path, "/registrations"),
		strings.HasSuffix(path, "/register"):
		return RateLimitTypeBooking

	case strings.Contains(path, "/cart"),
		strings.Contains(path, "/orders"):
		return RateLimitTypeCart

	case strings.Contains(path, "/trips"),
		strings.Contains(path, "/products"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
