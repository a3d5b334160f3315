// Package ratelimit throttles requests per client IP with a fixed window
// counter kept in Redis.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/config"
)

const keyPrefix = "rate_limit:"

// Counter is the part of the Redis client the limiter uses.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

// New returns a limiter allowing limit requests per window. A nil counter
// disables limiting.
func New(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// NewRedisClient returns nil without error when no address is configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}

// Middleware counts requests under scope so separate routes keep separate
// budgets.
func (l *Limiter) Middleware(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || l.counter == nil || l.limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := keyPrefix + scope + ":" + clientIP(r)
			count, err := l.counter.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: redis unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				if err := l.counter.Expire(r.Context(), key, l.window).Err(); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("ratelimit: failed to set window expiry")
				}
			}

			if count > l.limit {
				log.Warn().Str("key", key).Int64("count", count).Msg("ratelimit: limit exceeded")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
				writeTooMany(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type peerKey struct{}

// CapturePeer records the socket address of the connection. It must run
// before any middleware that rewrites RemoteAddr from proxy headers, such as
// chi's RealIP, so that a client cannot pick its own rate limit key.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if peer, ok := r.Context().Value(peerKey{}).(string); ok && peer != "" {
		addr = peer
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func writeTooMany(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Too many requests, please try again later",
	})
}
