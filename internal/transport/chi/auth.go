package chi

import (
	"net/http"
	"strings"
)

// exemptPaths bypass authentication.
var exemptPaths = map[string]struct{}{
	"/metrics": {},
}

// APIKeyAuthMiddleware validates "Authorization: ApiKey <key>" headers.
// If apiKeys is empty, authentication is disabled (pass-through).
func APIKeyAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, unauthorized("missing authentication credentials for REST request"))
				return
			}

			// The scheme is case-insensitive: go-elasticsearch sends "APIKey".
			const prefix = "ApiKey "
			if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
				writeError(w, unauthorized("authorization header must use the ApiKey scheme"))
				return
			}

			if _, ok := validKeys[auth[len(prefix):]]; !ok {
				writeError(w, unauthorized("unable to authenticate with provided credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(reason string) error {
	return &stubError{http.StatusUnauthorized, "security_exception", reason}
}
