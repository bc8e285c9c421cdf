package middleware

import (
	"context"
	"net/http"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

// TokenHeader carries the session token issued by /connect.
const TokenHeader = "X-Token"

// Key to store the user id in the request context
type key int

const userIdKey key = 0

type SessionResolver interface {
	ResolveSession(ctx context.Context, token domain.Token) (domain.UserId, error)
}

// Auth holds dependencies for authentication middleware
type Auth struct {
	sessions SessionResolver
}

func NewAuth(sessions SessionResolver) *Auth {
	return &Auth{sessions: sessions}
}

// NeedAuth rejects requests without a valid session token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userId, err := a.resolve(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserId(r.Context(), userId)))
		})
	}
}

// OptionalAuth populates the user id if the token is valid, anonymous requests pass through.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetToken(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			userId, err := a.resolve(r)
			if err != nil {
				if !isUnauthorized(err) {
					logger.Log.Warn("session lookup failed, serving anonymously", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserId(r.Context(), userId)))
		})
	}
}

func (a *Auth) resolve(r *http.Request) (domain.UserId, error) {
	token := GetToken(r)
	if token == "" {
		return domain.UserId{}, errors.ErrUnauthorized
	}
	return a.sessions.ResolveSession(r.Context(), token)
}

func isUnauthorized(err error) bool {
	return errors.StatusCode(err) == http.StatusUnauthorized
}

func withUserId(ctx context.Context, userId domain.UserId) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

// GetToken returns the raw session token of the request, if any.
func GetToken(r *http.Request) domain.Token {
	return r.Header.Get(TokenHeader)
}

// GetUserIdFromContext returns nil for anonymous requests.
func GetUserIdFromContext(r *http.Request) *domain.UserId {
	userId, ok := r.Context().Value(userIdKey).(domain.UserId)
	if !ok {
		return nil
	}
	return &userId
}
