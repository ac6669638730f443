package ai

import "context"

// Assistants — операции Assistants API (ассистент, thread, сообщения, run), которые нужны прокси.
// Реализация OpenAIAssistants ходит в Azure OpenAI; в тестах подменяется фейком.
type Assistants interface {
	CreateAssistant(ctx context.Context, opts AssistantOptions) (string, error)
	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID string, role Role, text string) (string, error)
	CreateRun(ctx context.Context, threadID string, assistantID string) (Run, error)
	GetRun(ctx context.Context, threadID string, runID string) (Run, error)
	// ListMessages возвращает сообщения thread в том порядке, в котором их отдал сервис.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	DeleteAssistant(ctx context.Context, assistantID string) error
	DeleteThread(ctx context.Context, threadID string) error
}

// AssistantOptions статическая конфигурация ассистента.
type AssistantOptions struct {
	Model        string
	Name         string
	Instructions string
	Tools        []string // типы инструментов, напр. "code_interpreter"
	FileIDs      []string // файлы для code interpreter
	Temperature  float64
	TopP         float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const ToolCodeInterpreter = "code_interpreter"

type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// Pending сообщает, что run ещё не вышел из очереди или выполнения.
func (s RunStatus) Pending() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

type Run struct {
	ID        string
	Status    RunStatus
	LastError string // причина неуспеха от сервиса, если есть
}

type ContentType string

const (
	ContentText      ContentType = "text"
	ContentImageFile ContentType = "image_file"
)

// Content один элемент содержимого сообщения.
type Content struct {
	Type   ContentType
	Text   string // для text
	FileID string // для image_file
}

type Message struct {
	ID      string
	Role    Role
	Content []Content
}
