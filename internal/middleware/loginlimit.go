package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/finsight/portal-server-go/internal/config"
)

const loginLimitKeyPrefix = "loginlimit:"

// loginLimitScript implements a sliding window counter per client IP.
var loginLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

return 1
`)

// LoginRateLimitMiddleware throttles credential-guessing by IP across all
// login and signup endpoints. It sits in front of authentication, so it keys
// on the client address rather than an identity.
type LoginRateLimitMiddleware struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLoginRateLimitMiddleware(client *redis.Client) *LoginRateLimitMiddleware {
	return &LoginRateLimitMiddleware{
		client: client,
		limit:  config.LoginRateLimit,
		window: config.LoginRateWindow,
	}
}

func (m *LoginRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := loginLimitKeyPrefix + ip

		allowed, err := loginLimitScript.Run(
			r.Context(), m.client, []string{key},
			time.Now().Unix(), int64(m.window.Seconds()), m.limit,
		).Int64()
		if err != nil {
			// A broken limiter should not lock everyone out.
			log.Warn().Err(err).Str("ip", ip).Msg("login rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if allowed != 1 {
			w.Header().Set("Retry-After", strconv.Itoa(int(m.window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"message": "Too many login attempts. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
