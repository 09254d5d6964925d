package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

// attemptCounter is the slice of the redis client the limiter needs.
type attemptCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy throttles one credential surface (login, register)
// with a fixed window per client IP and per target account.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// key builds the counter key for one dimension. Email subjects arrive
// pre-hashed so shopper addresses never become redis keys.
func (p AuthRateLimitPolicy) key(dimension, subject string) string {
	return fmt.Sprintf("rl:%s:%s:%s", dimension, p.name, subject)
}

// AuthRateLimit guards login and registration. The cheap per-IP counter
// runs first; the per-email counter needs the body read and replayed, so
// it only runs when the IP check passes.
func AuthRateLimit(policy AuthRateLimitPolicy, counter attemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || counter == nil {
			return next
		}
		limiter := authLimiter{policy: policy, counter: counter, logg: logg}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter.serve(next, w, r)
		})
	}
}

type authLimiter struct {
	policy  AuthRateLimitPolicy
	counter attemptCounter
	logg    *logger.Logger
}

func (l authLimiter) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if l.policy.ipLimit > 0 {
		if ip := requestIP(r); ip != "" {
			if !l.check(ctx, w, "ip", ip, l.policy.ipLimit) {
				return
			}
		}
	}

	if l.policy.emailLimit > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if subject := emailSubject(body); subject != "" {
			if !l.check(ctx, w, "email", subject, l.policy.emailLimit) {
				return
			}
		}
	}

	next.ServeHTTP(w, r)
}

// check increments one counter and writes the 429 itself when the window
// is exhausted. Returns false when the request must not proceed.
func (l authLimiter) check(ctx context.Context, w http.ResponseWriter, dimension, subject string, limit int) bool {
	key := l.policy.key(dimension, subject)
	count, err := l.counter.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}

	if l.logg != nil {
		fields := map[string]any{
			"policy":         l.policy.name,
			"dimension":      dimension,
			"subject":        subject,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(l.policy.window.Seconds()),
		}
		l.logg.Warn(l.logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return false
}

// emailSubject extracts, lowercases, and hashes the email from a login or
// registration body.
func emailSubject(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
