/**
 * @description
 * Custom middleware for the HTTP router. The aggregator performs no
 * credential validation of its own: the Authorization header is lifted into
 * the request context here and propagated to every downstream call
 * unchanged, and a downstream 401 is the authorization decision.
 */
package api

import (
	"net/http"

	"github.com/financeplanner/aggregator-service/pkg/downstream"
)

// CredentialPropagation stores the inbound Authorization header in the
// request context for the downstream clients to forward.
func CredentialPropagation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if credential := r.Header.Get("Authorization"); credential != "" {
			r = r.WithContext(downstream.WithCredential(r.Context(), credential))
		}
		next.ServeHTTP(w, r)
	})
}
