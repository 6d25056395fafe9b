package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CartSessionHeader carries the opaque cart session between client and server.
const CartSessionHeader = "X-Cart-Session"

// CartSession resolves the shopper's cart session. A missing header mints a
// new session; a malformed one is rejected. The resolved id is echoed back.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				sessionID = strings.ReplaceAll(uuid.NewString(), "-", "")
			} else if !cart.ValidSession(sessionID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("invalid cart session",
					pkgerrors.Field(CartSessionHeader, "must be 8 to 128 letters, digits, dashes or underscores")))
				return
			}

			w.Header().Set(CartSessionHeader, sessionID)
			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
