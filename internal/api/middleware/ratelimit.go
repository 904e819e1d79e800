package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
)

// RateLimitConfig is a fixed-window limit per client IP
type RateLimitConfig struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// OTPRateLimit allows five OTP requests per client every five minutes
var OTPRateLimit = RateLimitConfig{
	Name:    "otp",
	Limit:   5,
	Window:  5 * time.Minute,
	Message: "Too many OTP requests. Please try again after 5 minutes.",
}

// RateLimit counts requests per client IP in the cache and rejects those over
// the limit with 429. Cache failures let the request through.
func RateLimit(cache providers.CacheProvider, cfg RateLimitConfig) func(http.Handler) http.Handler {
	windowSeconds := int(cfg.Window / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			window := time.Now().Unix() / int64(windowSeconds)
			key := fmt.Sprintf("ratelimit:%s:%s:%d", cfg.Name, ClientIP(r), window)

			count, err := cache.Incr(r.Context(), key, windowSeconds)
			if err != nil {
				log.Warn().Err(err).Str("limiter", cfg.Name).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retryAfter := (window+1)*int64(windowSeconds) - time.Now().Unix()
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				writeError(w, http.StatusTooManyRequests, cfg.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address of the connected peer. Forwarding headers are
// only honoured through TrustedProxies, which rewrites RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ParseTrustedProxies accepts IPs and CIDR ranges
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// TrustedProxies replaces RemoteAddr with the client address reported by a
// trusted reverse proxy. X-Forwarded-For is walked from the right and the
// first hop outside the trusted ranges wins; X-Real-IP is used when there is
// no X-Forwarded-For. Requests from untrusted peers are left untouched.
func TrustedProxies(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseIP(ClientIP(r))
			if !ok || !isTrusted(peer, trusted) {
				next.ServeHTTP(w, r)
				return
			}
			if client, ok := forwardedClient(r, trusted); ok {
				r.RemoteAddr = net.JoinHostPort(client.String(), "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := parseIP(hops[i])
			if !ok {
				return netip.Addr{}, false
			}
			if !isTrusted(addr, trusted) {
				return addr, true
			}
		}
		return netip.Addr{}, false
	}
	return parseIP(r.Header.Get("X-Real-IP"))
}

func parseIP(value string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
