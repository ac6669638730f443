package ask

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/config"
	"context"
	"errors"
	"time"
)

type runGetter interface {
	GetRun(ctx context.Context, threadID string, runID string) (ai.Run, error)
}

// waitForRun опрашивает статус run, пока он queued или in_progress.
// Любой другой статус завершает ожидание сразу, без повторного запроса.
// Пауза начинается с cfg.Interval и растёт в cfg.Backoff раз до cfg.MaxInterval.
func waitForRun(ctx context.Context, api runGetter, threadID string, run ai.Run, cfg config.PollConfig, onPoll func(ai.Run)) (ai.Run, error) {
	if !run.Status.Pending() {
		return run, nil
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, cfg.Timeout, ErrRunTimeout)
		defer cancel()
	}

	wait := cfg.Interval
	for attempt := 0; run.Status.Pending(); attempt++ {
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return run, ErrRunTimeout
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return run, context.Cause(ctx)
		case <-t.C:
		}

		r, err := api.GetRun(ctx, threadID, run.ID)
		if err != nil {
			// Таймаут мог сработать посреди запроса статуса.
			if cause := context.Cause(ctx); errors.Is(cause, ErrRunTimeout) {
				return run, cause
			}
			return run, err
		}
		run = r
		if onPoll != nil {
			onPoll(run)
		}
		wait = nextInterval(wait, cfg)
	}
	return run, nil
}

func nextInterval(cur time.Duration, cfg config.PollConfig) time.Duration {
	next := time.Duration(float64(cur) * cfg.Backoff)
	if cfg.MaxInterval > 0 && next > cfg.MaxInterval {
		next = cfg.MaxInterval
	}
	if next <= 0 {
		next = cur
	}
	return next
}
