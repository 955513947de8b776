package middleware

import (
	"net/http"
	"strings"

	"github.com/chorushq/chorus/internal/ctxkeys"
	"github.com/chorushq/chorus/internal/handler"
	"github.com/chorushq/chorus/internal/service"
)

// AuthMiddleware verifies the bearer token and, when valid, resolves the
// subject account into the request context. Requests without a token or with
// an invalid one continue unauthenticated; handlers that require an account
// use RequireAuth.
func AuthMiddleware(issuer *service.TokenIssuer, accountService *service.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// The token subject may have withdrawn since issuance
			account, err := accountService.ByID(claims.Subject)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Security: never expose the credential hash downstream
			account.PasswordHash = nil

			ctx := ctxkeys.WithAccount(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not resolve to an account
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := ctxkeys.Account(r.Context())
		if account == nil {
			handler.WriteError(w, service.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
