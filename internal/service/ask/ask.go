package ask

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/config"
	"AssistantProxy/internal/metrics"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMessageRequired пустое сообщение; удалённых вызовов не было.
	ErrMessageRequired = errors.New("message is required")
	// ErrRunNotCompleted run завершился статусом, отличным от completed.
	ErrRunNotCompleted = errors.New("run did not complete")
	// ErrRunTimeout run не вышел из queued/in_progress за отведённое время или число попыток.
	ErrRunTimeout = errors.New("run polling timed out")
)

const cleanupTimeout = 15 * time.Second

// ResponseItem нормализованный элемент ответа: text или image (base64).
type ResponseItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	ItemText  = "text"
	ItemImage = "image"
)

type Service struct {
	cfg        *config.Config
	api        ai.Assistants
	translator *Translator
	metrics    *metrics.Metrics
	logger     *zap.SugaredLogger
}

func New(cfg *config.Config, api ai.Assistants, files FileSource, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		cfg:        cfg,
		api:        api,
		translator: NewTranslator(files, m, logger),
		metrics:    m,
		logger:     logger,
	}
}

func (s *Service) assistantOptions() ai.AssistantOptions {
	a := s.cfg.Assistant
	return ai.AssistantOptions{
		Model:        a.Model,
		Name:         a.Name,
		Instructions: a.Instructions,
		Tools:        []string{ai.ToolCodeInterpreter},
		FileIDs:      []string{},
		Temperature:  a.Temperature,
		TopP:         a.TopP,
	}
}

// Ask выполняет полный сценарий для одного сообщения: ассистент -> thread -> сообщение -> run,
// ожидание завершения run и перевод ответа. Возвращает не больше одного элемента.
func (s *Service) Ask(ctx context.Context, message string) ([]ResponseItem, error) {
	if message == "" {
		return nil, ErrMessageRequired
	}

	assistantID, err := s.api.CreateAssistant(ctx, s.assistantOptions())
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Assistant created", "assistantID", assistantID)
	if s.cfg.CleanupResources {
		defer s.release(ctx, "assistant", assistantID, s.api.DeleteAssistant)
	}

	threadID, err := s.api.CreateThread(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Thread created", "threadID", threadID)
	if s.cfg.CleanupResources {
		defer s.release(ctx, "thread", threadID, s.api.DeleteThread)
	}

	messageID, err := s.api.CreateMessage(ctx, threadID, ai.RoleUser, message)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Message created", "threadID", threadID, "messageID", messageID)

	run, err := s.api.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Run started", "threadID", threadID, "runID", run.ID, "status", run.Status)

	start := time.Now()
	run, err = waitForRun(ctx, s.api, threadID, run, s.cfg.Poll, func(r ai.Run) {
		s.metrics.RunPolls.Inc()
		s.logger.Infow("Current run status", "runID", r.ID, "status", r.Status)
	})
	if err != nil {
		if errors.Is(err, ErrRunTimeout) {
			s.metrics.RunTerminal.WithLabelValues("timeout").Inc()
			s.logger.Errorw("Run polling timed out", "runID", run.ID, "lastStatus", run.Status, "duration", time.Since(start).String())
		}
		return nil, err
	}
	s.metrics.RunTerminal.WithLabelValues(string(run.Status)).Inc()

	if run.Status != ai.RunStatusCompleted {
		s.logger.Errorw("Run finished without completion",
			"runID", run.ID,
			"status", run.Status,
			"reason", run.LastError,
			"duration", time.Since(start).String(),
		)
		return nil, fmt.Errorf("%w: status %s", ErrRunNotCompleted, run.Status)
	}

	messages, err := s.api.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Messages in the thread", "threadID", threadID, "count", len(messages))

	return s.translator.Translate(ctx, messages), nil
}

// release удаляет ресурс, созданный в рамках запроса. Ошибки только логируются:
// на ответ клиенту они не влияют.
func (s *Service) release(ctx context.Context, kind string, id string, del func(context.Context, string) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := del(ctx, id); err != nil {
		s.logger.Warnw("Failed to delete "+kind, "id", id, "error", err)
		return
	}
	s.logger.Debugw("Deleted "+kind, "id", id)
}
