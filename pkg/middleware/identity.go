package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/configuration"
)

// WithIdentity extracts the verified identity headers set by the upstream
// authentication collaborator. Requests without the headers proceed
// unauthenticated; guards downstream reject them.
func WithIdentity() mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(conf.UserIDHeader)
			email := r.Header.Get(conf.UserEmailHeader)
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(rawID)
			if err != nil {
				composables.UseLogger(r.Context()).
					WithError(err).
					Warn("malformed identity header; treating request as unauthenticated")
				next.ServeHTTP(w, r)
				return
			}

			ctx := composables.WithIdentity(r.Context(), composables.Identity{
				UserID: userID,
				Email:  email,
			})
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
