package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/api/models"
)

// Recovery converts panics into 500 responses instead of dropped connections.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					apiErr := models.ErrInternal("Internal server error").Error
					json.NewEncoder(w).Encode(models.BaseResponse{
						Success:   false,
						Timestamp: time.Now().UTC(),
						Message:   apiErr.Message,
						Error:     &apiErr,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
