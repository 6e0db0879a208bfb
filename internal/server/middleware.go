package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
)

// requestLogger logs one entry per request through the application logger.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("Request handled",
					logging.F(logging.FieldMethod, r.Method),
					logging.F(logging.FieldPath, r.URL.Path),
					logging.F(logging.FieldStatus, ww.Status()),
					logging.F(logging.FieldBytes, ww.BytesWritten()),
					logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
					logging.F(logging.FieldRequestID, middleware.GetReqID(r.Context())))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
