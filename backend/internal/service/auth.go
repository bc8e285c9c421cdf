package service

import (
	"context"
	"strings"
	"time"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"github.com/itchan-dev/filesmanager/shared/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const sessionKeyPrefix = "auth_"

type AuthService interface {
	Register(ctx context.Context, email domain.Email, password domain.Password) (domain.User, error)
	Login(ctx context.Context, basicCredential string) (domain.Token, error)
	Logout(ctx context.Context, token domain.Token) error
	ResolveSession(ctx context.Context, token domain.Token) (domain.UserId, error)
	Me(ctx context.Context, userId domain.UserId) (domain.User, error)
}

type Auth struct {
	storage    AuthStorage
	sessions   SessionCache
	sessionTTL time.Duration
}

type AuthStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.UserId, error)
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
}

// SessionCache returns errors.ErrNotFound from Get for missing or expired keys.
type SessionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del reports whether the key existed, so concurrent deletes of one key succeed once.
	Del(ctx context.Context, key string) (bool, error)
}

func NewAuth(storage AuthStorage, sessions SessionCache, sessionTTL time.Duration) *Auth {
	return &Auth{
		storage:    storage,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

func sessionKey(token domain.Token) string {
	return sessionKeyPrefix + token
}

func normalizeEmail(email domain.Email) domain.Email {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Auth) Register(ctx context.Context, email domain.Email, password domain.Password) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, errors.ErrMissingEmail
	}
	if password == "" {
		return domain.User{}, errors.ErrMissingPassword
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	user := domain.User{Email: email, PassHash: string(passHash)}
	id, err := a.storage.SaveUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	user.Id = id
	logger.Log.Info("user registered", "user_id", id.Hex())
	return user, nil
}

// Login takes the Base64 part of a Basic authorization header and opens a session.
func (a *Auth) Login(ctx context.Context, basicCredential string) (domain.Token, error) {
	decoded, err := utils.DecodeBase64(basicCredential)
	if err != nil {
		return "", errors.ErrMalformedCredential
	}
	email, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", errors.ErrMalformedCredential
	}

	user, err := a.storage.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.ErrUnauthorized
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", errors.ErrUnauthorized
	}

	token := utils.NewToken()
	if err := a.sessions.Set(ctx, sessionKey(token), user.Id.Hex(), a.sessionTTL); err != nil {
		logger.Log.Error("failed to store session", "user_id", user.Id.Hex(), "error", err)
		return "", err
	}
	return token, nil
}

func (a *Auth) Logout(ctx context.Context, token domain.Token) error {
	userId, err := a.ResolveSession(ctx, token)
	if err != nil {
		return err
	}
	if _, err := a.storage.UserById(ctx, userId); err != nil {
		if errors.IsNotFound(err) {
			return errors.ErrUnauthorized
		}
		return err
	}
	deleted, err := a.sessions.Del(ctx, sessionKey(token))
	if err != nil {
		return err
	}
	if !deleted {
		// a concurrent logout got there first
		return errors.ErrUnauthorized
	}
	return nil
}

// ResolveSession maps a token to its user id. It never extends the session lifetime.
func (a *Auth) ResolveSession(ctx context.Context, token domain.Token) (domain.UserId, error) {
	if token == "" {
		return domain.UserId{}, errors.ErrUnauthorized
	}
	value, err := a.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.UserId{}, errors.ErrUnauthorized
		}
		return domain.UserId{}, err
	}
	userId, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		logger.Log.Warn("session holds invalid user id", "error", err)
		return domain.UserId{}, errors.ErrUnauthorized
	}
	return userId, nil
}

func (a *Auth) Me(ctx context.Context, userId domain.UserId) (domain.User, error) {
	user, err := a.storage.UserById(ctx, userId)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, errors.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return user, nil
}
