package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/middleware/ratelimiter"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

var errRateLimited = errors.New("Rate limit exceeded, try again later", http.StatusTooManyRequests)

// RateLimit rejects requests once the identity returned by getIdentity runs out of tokens.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				utils.WriteErrorAndStatusCode(w, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIP returns the client address of the TCP connection.
// X-Real-IP and X-Forwarded-For are ignored since they are client controlled.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
