package middleware

import (
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"resort/shared"
	"resort/shared/constant"
	"resort/transport/http/response"

	"github.com/rs/zerolog/log"
)

const cacheKeyRateLimit = "limiter"

// RateLimit counts requests per client IP in fixed windows. Redis errors let the request through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds

			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, a.clientIP(r))
			ctx := r.Context()

			count, err := a.cache.Increment(ctx, cacheKey, windowSecs)
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, letting request through")

				next.ServeHTTP(w, r)

				return
			}

			if count > int64(maxReqs) {
				w.Header().Set(constant.RequestHeaderRetryAfter, strconv.Itoa(windowSecs))
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, int64(maxReqs)-count), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != constant.Empty {
		return ua
	}

	return "unknown"
}

// clientIP returns the connecting peer unless it is a trusted proxy. Behind trusted proxies it walks
// X-Forwarded-For from the right and takes the first hop no trusted proxy owns, falling back to X-Real-IP.
func (a *appMiddleware) clientIP(r *http.Request) string {
	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	addr := peer.Addr().Unmap()
	if !a.trusted(addr) {
		return addr.String()
	}

	hops := strings.Split(r.Header.Get(constant.RequestHeaderForwardedFor), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}

		if hop = hop.Unmap(); !a.trusted(hop) {
			return hop.String()
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP))); err == nil {
		return realIP.Unmap().String()
	}

	return addr.String()
}

func (a *appMiddleware) trusted(addr netip.Addr) bool {
	for _, proxy := range a.proxies {
		if proxy.Contains(addr) {
			return true
		}
	}

	return false
}

func parseProxies(raw []string) []netip.Prefix {
	proxies := make([]netip.Prefix, 0, len(raw))

	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == constant.Empty {
			continue
		}

		prefix, err := netip.ParsePrefix(value)
		if err != nil {
			addr, addrErr := netip.ParseAddr(value)
			if addrErr != nil {
				log.Warn().Err(err).Str("proxy", value).Msg("ignoring invalid trusted proxy")

				continue
			}

			prefix = netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen())
		}

		proxies = append(proxies, prefix.Masked())
	}

	return proxies
}
