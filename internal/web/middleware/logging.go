package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request through logrus. It must run after
// chi's RequestID middleware to pick up the request id.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"request_id": chiMiddleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"remote":     r.RemoteAddr,
					"status":     status,
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
				})
				switch {
				case status >= 500:
					entry.Error("request failed")
				case status >= 400:
					entry.Warn("request rejected")
				default:
					entry.Info("request served")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
