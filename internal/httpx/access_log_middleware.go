package httpx

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// statusRecorder remembers the status and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int64
	written bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.written {
		return
	}
	rec.status = code
	rec.written = true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.written {
		rec.WriteHeader(http.StatusOK)
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// quietPaths are probe endpoints left out of the access log.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
}

// AccessLogMiddleware logs one line per request, query string included.
func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		if quietPaths[r.URL.Path] && rec.status < http.StatusInternalServerError {
			return
		}
		log.Printf("access method=%s path=%s query=%q status=%d bytes=%d duration_ms=%d request_id=%s",
			r.Method,
			r.URL.Path,
			strings.TrimSpace(r.URL.RawQuery),
			rec.status,
			rec.bytes,
			time.Since(start).Milliseconds(),
			RequestIDFrom(r),
		)
	})
}
