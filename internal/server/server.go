package server

import (
	"AssistantProxy/internal/config"
	"AssistantProxy/internal/metrics"
	"AssistantProxy/internal/service/ask"
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Asker выполняет сценарий вопроса к ассистенту.
type Asker interface {
	Ask(ctx context.Context, message string) ([]ask.ResponseItem, error)
}

// Server HTTP-сервер прокси: POST /ask, GET /health, GET /metrics.
type Server struct {
	cfg     *config.Config
	asker   Asker
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
	srv     *http.Server
	running atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

func New(cfg *config.Config, asker Asker, m *metrics.Metrics, logger *zap.SugaredLogger) *Server {
	s := &Server{cfg: cfg, asker: asker, metrics: m, logger: logger, done: make(chan struct{})}

	// Ответ на /ask ждёт завершения run, поэтому таймаут записи длиннее таймаута опроса.
	var writeTimeout time.Duration
	if cfg.Poll.Timeout > 0 {
		writeTimeout = cfg.Poll.Timeout + time.Minute
	}

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler собирает роутер со всеми middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(s.accessLogMiddleware)

	router.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return router
}

// Start запускает сервер в отдельной горутине и немедленно возвращается.
// Порт занимается синхронно, чтобы ошибка bind вернулась вызывающему.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	go func() {
		s.logger.Infow("Server is running", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Server stopped with error", "error", err)
		} else {
			s.logger.Infow("Server stopped")
		}
	}()

	// По отмене контекста — graceful shutdown, после него закрывается Done.
	go func() {
		<-ctx.Done()
		if err := s.Stop(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warnw("server close error", "error", err)
		}
		s.doneOnce.Do(func() { close(s.done) })
	}()
	return nil
}

// Done закрывается, когда сервер остановлен по отмене контекста Start.
func (s *Server) Done() <-chan struct{} { return s.done }

// Stop выполняет graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.srv.Addr }

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
