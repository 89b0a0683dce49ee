package httpx

import (
	"log"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope. When the
// handler already started the response (a CSV export midway, say) the body
// is left truncated and only the panic is logged.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			started := false
			if rec, ok := w.(*statusRecorder); ok {
				started = rec.written
			}
			log.Printf("panic recovered method=%s path=%s request_id=%s response_started=%t error=%v stack=%s",
				r.Method, r.URL.Path, RequestIDFrom(r), started, v, debug.Stack())

			if !started {
				JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
