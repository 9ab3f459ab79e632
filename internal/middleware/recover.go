package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Recover recovers from panics and logs the error. The response keeps
// the diagnostic trace so clients can surface it verbatim.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				m.log.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": "An unexpected error occurred",
					"trace":   fmt.Sprintf("%v\n%s", err, stack),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
