package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"bankledger/internal/app/logger"
)

const idempotencyHeader = "Idempotency-Key"

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// recorder buffers the response while writing it through, so a successful
// reply can be replayed for a repeated key.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the cached response for a repeated Idempotency-Key so
// a client retrying a transfer cannot execute it twice. Keys must be UUIDs.
// Redis being unreachable fails open: the request proceeds uncached, which
// is safe because the ledger itself never double-applies a committed
// transfer and failed ones have no effect.
func Idempotency(rdb *redis.Client, ttl time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.Get(r.Context(), "Middleware.Idempotency")

			key := r.Header.Get(idempotencyHeader)
			if rdb == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := uuid.Parse(key); err != nil {
				log.Debug().Str("key", key).Msg("Malformed idempotency key")
				http.Error(w, "malformed Idempotency-Key", http.StatusBadRequest)
				return
			}

			cacheKey := "idempotency:" + key

			raw, err := rdb.Get(r.Context(), cacheKey).Bytes()
			if err == nil {
				cached := cachedResponse{}
				if err := json.Unmarshal(raw, &cached); err == nil {
					log.Debug().Str("key", key).Msg("Replaying cached response")
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(cached.Status)
					_, _ = w.Write(cached.Body)
					return
				}
			} else if !errors.Is(err, redis.Nil) {
				log.Warn().Err(err).Msg("Idempotency store unavailable")
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// only terminal outcomes are replayable; retryable failures and
			// internal errors must stay retryable
			if rec.status >= http.StatusInternalServerError {
				return
			}

			raw, err = json.Marshal(cachedResponse{Status: rec.status, Body: rec.buf.Bytes()})
			if err != nil {
				return
			}
			if err := rdb.Set(r.Context(), cacheKey, raw, ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("Idempotency store write failed")
			}
		})
	}
}
