package ask

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/config"
	"AssistantProxy/internal/metrics"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeAPI записывает порядок вызовов и отдаёт заранее заданные ответы.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	created  ai.Run   // ответ CreateRun
	polled   []ai.Run // последовательные ответы GetRun; последний повторяется
	messages []ai.Message
	errOn    map[string]error

	gotOpts    ai.AssistantOptions
	gotRole    ai.Role
	gotMessage string
	deleted    []string
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errOn[name]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) CreateAssistant(_ context.Context, opts ai.AssistantOptions) (string, error) {
	f.gotOpts = opts
	if err := f.record("CreateAssistant"); err != nil {
		return "", err
	}
	return "asst_1", nil
}

func (f *fakeAPI) CreateThread(_ context.Context) (string, error) {
	if err := f.record("CreateThread"); err != nil {
		return "", err
	}
	return "thread_1", nil
}

func (f *fakeAPI) CreateMessage(_ context.Context, _ string, role ai.Role, text string) (string, error) {
	f.gotRole, f.gotMessage = role, text
	if err := f.record("CreateMessage"); err != nil {
		return "", err
	}
	return "msg_1", nil
}

func (f *fakeAPI) CreateRun(_ context.Context, _ string, _ string) (ai.Run, error) {
	if err := f.record("CreateRun"); err != nil {
		return ai.Run{}, err
	}
	return f.created, nil
}

func (f *fakeAPI) GetRun(_ context.Context, _ string, _ string) (ai.Run, error) {
	if err := f.record("GetRun"); err != nil {
		return ai.Run{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.polled) == 0 {
		return ai.Run{ID: f.created.ID, Status: ai.RunStatusInProgress}, nil
	}
	r := f.polled[0]
	if len(f.polled) > 1 {
		f.polled = f.polled[1:]
	}
	return r, nil
}

func (f *fakeAPI) ListMessages(_ context.Context, _ string) ([]ai.Message, error) {
	if err := f.record("ListMessages"); err != nil {
		return nil, err
	}
	return f.messages, nil
}

func (f *fakeAPI) DeleteAssistant(_ context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.record("DeleteAssistant")
}

func (f *fakeAPI) DeleteThread(_ context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.record("DeleteThread")
}

// fakeFiles отдаёт содержимое по id; отсутствующий id — ошибка.
type fakeFiles struct {
	mu       sync.Mutex
	content  map[string][]byte
	failures map[string]error
	fetched  []string
}

func (f *fakeFiles) Fetch(_ context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, fileID)
	if err, ok := f.failures[fileID]; ok {
		return nil, err
	}
	b, ok := f.content[fileID]
	if !ok {
		return nil, errors.New("connection reset")
	}
	return b, nil
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Poll = config.PollConfig{
		Interval:    time.Millisecond,
		MaxInterval: 2 * time.Millisecond,
		Backoff:     2,
		Timeout:     time.Second,
	}
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, api ai.Assistants, files FileSource) *Service {
	t.Helper()
	return New(cfg, api, files, metrics.New(), zaptest.NewLogger(t).Sugar())
}

func textMessage(text string) ai.Message {
	return ai.Message{Role: ai.RoleAssistant, Content: []ai.Content{{Type: ai.ContentText, Text: text}}}
}
