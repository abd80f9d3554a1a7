package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/gorilla/mux"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the identity stored by the authenticate middleware.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate admits requests whose bearer token passes parse and stores
// the resulting identity in the request context.
func (s *Server) authenticate(parse func(string) (*auth.Identity, error)) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				s.writeError(w, r, common.ErrUnauthenticated)
				return
			}

			id, err := parse(token)
			if err != nil {
				s.writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

// requireRole only checks the role claim; the database is not consulted.
func requireRole(role models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				status, msg := errorStatus(common.ErrUnauthenticated)
				writeMessage(w, status, msg)
				return
			}
			if id.Role != string(role) {
				status, msg := errorStatus(common.ErrForbidden)
				writeMessage(w, status, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
