package middleware

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
)

type basicAuthUserKey struct{}

type BasicAuthConfig struct {
	Skip  func(ctx handler.Context) bool
	Realm string
	// Users maps a username to a bcrypt hash of the password.
	Users map[string]string
	// Validator replaces the Users lookup when set.
	Validator func(ctx context.Context, user, password string) bool
}

// BasicAuth protects routes with HTTP Basic authentication against bcrypt
// hashes. Failures short-circuit with 401 and a WWW-Authenticate challenge.
func BasicAuth[C handler.Context](cfg BasicAuthConfig) handler.Middleware[C] {
	if cfg.Realm == "" {
		cfg.Realm = "Restricted"
	}
	if cfg.Validator == nil {
		if len(cfg.Users) == 0 {
			panic("basicauth middleware: users or validator is required")
		}
		cfg.Validator = bcryptValidator(cfg.Users)
	}
	challenge := "Basic realm=" + strconv.Quote(cfg.Realm) + `, charset="UTF-8"`

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			user, password, ok := ctx.Request().BasicAuth()
			if !ok || !cfg.Validator(ctx, user, password) {
				return func(w http.ResponseWriter, r *http.Request) error {
					w.Header().Set("WWW-Authenticate", challenge)
					return response.ErrUnauthorized
				}
			}

			ctx.SetValue(basicAuthUserKey{}, user)
			return next(ctx)
		}
	}
}

// dummyHash is compared against when the user is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("waypoint"), bcrypt.MinCost)

func bcryptValidator(users map[string]string) func(context.Context, string, string) bool {
	return func(_ context.Context, user, password string) bool {
		hash, ok := users[user]
		if !ok {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
}

// GetBasicAuthUser returns the user authenticated by BasicAuth.
func GetBasicAuthUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(basicAuthUserKey{}).(string)
	return user, ok
}
