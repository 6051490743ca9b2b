package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// Recovery turns a handler panic into a 500 JSON response
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			observability.LoggerFromContext(r.Context()).Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": http.StatusText(http.StatusInternalServerError),
			})
		}()

		next.ServeHTTP(w, r)
	})
}
