package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a Redis-backed fixed-window limiter. Generation endpoints
// sit behind it because each request costs a model invocation.
type RateLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)

		count, err := rl.redis.Incr(r.Context(), key).Result()
		if err != nil {
			// Redis being down must not take the API with it.
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.redis.Expire(r.Context(), key, rl.window)
		}

		if count > int64(rl.limit) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// key buckets by authenticated user when available, by client address
// otherwise.
func (rl *RateLimiter) key(r *http.Request) string {
	subject := GetUserID(r.Context())
	if subject == "" {
		subject = r.RemoteAddr
	}
	bucket := time.Now().Unix() / int64(rl.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, subject, bucket)
}
