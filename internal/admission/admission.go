// Package admission implements pre-handshake admission control for
// incoming requests: a sliding per-IP rate limit plus a user-agent
// blocklist, behind a single Decide call.
package admission

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jackster042/live-score/internal/domain"
)

// maxTrackedIPs bounds the limiter map; beyond it, unknown IPs share a
// single overflow limiter rather than growing memory without limit.
const maxTrackedIPs = 100_000

// Controller implements domain.AdmissionController.
type Controller struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	overflow *rate.Limiter

	limit   rate.Limit
	burst   int
	blocked []string
}

// New creates a controller allowing limit requests per window from each
// client IP, and denying any User-Agent containing one of blockedUserAgents.
func New(limit int, window time.Duration, blockedUserAgents []string) *Controller {
	perSecond := rate.Limit(float64(limit) / window.Seconds())
	return &Controller{
		limiters: make(map[string]*rate.Limiter),
		overflow: rate.NewLimiter(perSecond, limit),
		limit:    perSecond,
		burst:    limit,
		blocked:  blockedUserAgents,
	}
}

// Decide admits or denies a request. Rate-limit denials and blocklist
// denials carry distinct reasons so callers can map them to 429 vs 403.
func (c *Controller) Decide(r *http.Request) (domain.Decision, error) {
	ua := r.Header.Get("User-Agent")
	for _, blocked := range c.blocked {
		if strings.Contains(ua, blocked) {
			return domain.Deny(domain.DenyForbidden), nil
		}
	}

	ip := clientIP(r)
	if !c.limiterFor(ip).Allow() {
		return domain.Deny(domain.DenyRateLimit), nil
	}

	return domain.Allow, nil
}

func (c *Controller) limiterFor(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lim, ok := c.limiters[ip]; ok {
		return lim
	}
	if len(c.limiters) >= maxTrackedIPs {
		return c.overflow
	}
	lim := rate.NewLimiter(c.limit, c.burst)
	c.limiters[ip] = lim
	return lim
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
