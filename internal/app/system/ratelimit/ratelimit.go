// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to drop stale entries
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing `limit` requests per `duration`.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from key fits in the current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}

	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for a key. Called after a successful login so
// legitimate users aren't penalized for earlier typos.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP: X-Forwarded-For (first entry), then
// X-Real-IP, then RemoteAddr without the port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// OTPLimiter guards the login-code request endpoint on two axes:
// per-IP (distributed guessing) and per-email (targeting one account).
type OTPLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewOTPLimiter creates a limiter with the defaults used in production:
// 10 requests per IP per minute, 5 per email per 5 minutes.
func NewOTPLimiter() *OTPLimiter {
	return &OTPLimiter{
		ipLimiter:    New(10, time.Minute),
		emailLimiter: New(5, 5*time.Minute),
	}
}

// Check reports whether an OTP request should be allowed, with a
// user-facing reason when blocked.
func (ol *OTPLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ol.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many requests. Please wait a minute before trying again."
	}
	if email != "" {
		if !ol.emailLimiter.Allow(strings.ToLower(strings.TrimSpace(email))) {
			return false, "Too many codes requested for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the per-email window after a successful login.
func (ol *OTPLimiter) ResetEmail(email string) {
	if email != "" {
		ol.emailLimiter.Reset(strings.ToLower(strings.TrimSpace(email)))
	}
}
