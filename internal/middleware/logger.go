package middleware

import (
	"app/internal/logger"
	"net/http"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggerMiddleware logs incoming HTTP requests.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Call the next handler in the chain
		next.ServeHTTP(rec, r)

		logger := logger.New()
		// Log full request URI including query params
		logger.Debug().Msgf("%s %s %d", r.Method, r.URL.RequestURI(), rec.status)
	})
}
