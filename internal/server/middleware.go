package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const headerRequestID = "X-Request-ID"

type ctxKey struct{}

// requestIDMiddleware берёт X-Request-ID из запроса или генерирует новый.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLogMiddleware пишет запрос в лог и в метрики.
func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		s.metrics.Requests.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		s.metrics.Duration.WithLabelValues(path).Observe(dur.Seconds())

		if path == "/metrics" || path == "/health" {
			return
		}
		s.logger.Infow("HTTP request",
			"method", r.Method,
			"path", path,
			"status", rec.status,
			"duration", dur.String(),
			"remote", r.RemoteAddr,
			"requestID", requestID(r.Context()),
		)
	})
}
