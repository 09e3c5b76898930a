package middleware

import (
	"net/http"
	"strconv"
	"time"

	"pet-vaccination-tracker/internal/platform/logger"
	"pet-vaccination-tracker/internal/platform/metrics"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog loguea cada request (método, ruta, status, duración) y cuenta
// en métricas. m puede ser nil.
func AccessLog(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.IncHTTP(r.Method, strconv.Itoa(status))

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}
			switch {
			case status >= 500:
				log.Error("http request", fields)
			case status >= 400:
				log.Warn("http request", fields)
			default:
				log.Debug("http request", fields)
			}
		})
	}
}
