package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-engine/internal/auth"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
)

// RequireSessionToken rejects requests whose token was not issued for the
// session named by the {id} path value. It must wrap a handler registered on
// a pattern containing {id}.
func RequireSessionToken(log logrus.FieldLogger, issuer *auth.Issuer) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := session.ParseID(r.PathValue("id"))
			if err != nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			token, err := auth.TokenFromRequest(r)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := issuer.Verify(token, id)
			if err != nil {
				log.WithField("session", id).Debug("rejected token: ", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionClaims(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*auth.SessionClaims)
	return claims, ok
}
