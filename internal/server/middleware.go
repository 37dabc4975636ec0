package server

import (
	"context"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/zenui/zendiagram/pkg/buildinfo"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/observability"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID honors a well-formed incoming X-Request-ID and mints a UUID
// otherwise.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || zerrors.ValidateID(id) != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func serverHeader(next http.Handler) http.Handler {
	ua := buildinfo.UserAgent()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", ua)
		next.ServeHTTP(w, r)
	})
}

// routeOf returns the matched route pattern, or the raw path before routing.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		route := routeOf(r)
		observability.Current().Request(ctx, observability.RequestEvent{
			Method:      r.Method,
			Route:       route,
			RequestID:   RequestID(ctx),
			Status:      status,
			Duration:    dur,
			RateLimited: status == http.StatusTooManyRequests,
		})

		logf := s.logger.Info
		if status >= http.StatusInternalServerError {
			logf = s.logger.Error
		}
		logf("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", RequestID(ctx))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic in handler",
				"panic", rec,
				"route", routeOf(r),
				"request_id", RequestID(r.Context()),
				"stack", string(debug.Stack()))
			writeError(w, r, http.StatusInternalServerError, string(zerrors.ErrCodeInternal), "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// Clients idle for longer than clientIdleTTL are dropped once their bucket
// has refilled. The sweep runs at most every clientSweepEvery.
const (
	clientIdleTTL    = 10 * time.Minute
	clientSweepEvery = time.Minute
)

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientBucket),
	}
}

func (c *clientLimiter) get(key string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Sub(c.lastSweep) >= clientSweepEvery {
		c.sweep(now)
	}
	b, ok := c.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops idle clients whose bucket is full again; a fresh bucket
// behaves the same. c.mu must be held.
func (c *clientLimiter) sweep(now time.Time) {
	c.lastSweep = now
	for key, b := range c.clients {
		if now.Sub(b.lastSeen) > clientIdleTTL && b.limiter.TokensAt(now) >= float64(c.burst) {
			delete(c.clients, key)
		}
	}
}

// allow takes a token for key. When none is available it reports how long
// the client should wait; nothing is consumed in that case.
func (c *clientLimiter) allow(key string, now time.Time) (wait time.Duration, remaining int) {
	l := c.get(key, now)
	res := l.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return d, 0
	}
	return 0, int(math.Max(0, l.TokensAt(now)))
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wait, remaining := s.limiter.allow(clientKey(r), time.Now())
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.burst))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if wait > 0 {
			rl := &zerrors.RateLimitedError{RetryAfter: int(math.Ceil(wait.Seconds()))}
			h.Set("Retry-After", strconv.Itoa(rl.RetryAfter))
			writeError(w, r, http.StatusTooManyRequests, string(rl.ErrorCode()), rl.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
