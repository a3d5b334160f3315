package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenParser turns a bearer token into the user id it was issued for.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

type UserLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Authenticator struct {
	tokens TokenParser
	users  UserLoader
}

func NewAuthenticator(tokens TokenParser, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// RequireAuth loads the caller from the Authorization bearer token and puts
// it in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
			return
		}

		userID, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			log.Warn().Err(err).Msg("Rejected bearer token")
			respondWithError(w, http.StatusUnauthorized, capitalize(auth.ErrInvalidToken.Error()))
			return
		}

		u, err := a.users.GetUserByID(r.Context(), userID)
		if err != nil {
			// A valid token for a deleted account is treated as invalid.
			respondWithServiceError(w, mapUserLookupError(err), "Failed to load user")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	})
}

func mapUserLookupError(err error) error {
	if mapErrorToStatusCode(err) == http.StatusNotFound {
		return auth.ErrInvalidToken
	}
	return err
}

// RequireAdmin must run after RequireAuth.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
			return
		}
		if !u.IsAdmin {
			log.Warn().Stringer("user_id", u.ID).Str("path", r.URL.Path).Msg("Non-admin on admin route")
			respondWithError(w, http.StatusForbidden, capitalize(errForbidden.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok && u != nil
}

// WithUser returns ctx carrying u, as RequireAuth would.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", r.RemoteAddr).
				Msg("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic_value", rec).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic in HTTP handler")
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
