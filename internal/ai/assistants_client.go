package ai

import (
	"AssistantProxy/internal/config"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
)

// NewAzureClient создаёт клиента Azure OpenAI. Вызывается один раз при старте процесса,
// дальше клиент только переиспользуется.
func NewAzureClient(cfg *config.Config) openai.Client {
	return openai.NewClient(
		azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion),
		azure.WithAPIKey(cfg.AzureAPIKey),
	)
}

// OpenAIAssistants реализует Assistants через Assistants API (beta: assistants, threads, runs).
type OpenAIAssistants struct {
	client *openai.Client
}

var _ Assistants = (*OpenAIAssistants)(nil)

func NewOpenAIAssistants(client *openai.Client) *OpenAIAssistants {
	return &OpenAIAssistants{client: client}
}

func (c *OpenAIAssistants) CreateAssistant(ctx context.Context, opts AssistantOptions) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}

	tools := make([]openai.AssistantToolUnionParam, 0, len(opts.Tools))
	for _, t := range opts.Tools {
		switch t {
		case ToolCodeInterpreter:
			tools = append(tools, openai.AssistantToolUnionParam{OfCodeInterpreter: &openai.CodeInterpreterToolParam{}})
		default:
			return "", fmt.Errorf("create assistant: unsupported tool %q", t)
		}
	}

	fileIDs := opts.FileIDs
	if fileIDs == nil {
		fileIDs = []string{}
	}

	asst, err := c.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        openai.ChatModel(opts.Model),
		Name:         openai.String(opts.Name),
		Instructions: openai.String(opts.Instructions),
		Tools:        tools,
		ToolResources: openai.BetaAssistantNewParamsToolResources{
			CodeInterpreter: openai.BetaAssistantNewParamsToolResourcesCodeInterpreter{FileIDs: fileIDs},
		},
		Temperature: openai.Float(opts.Temperature),
		TopP:        openai.Float(opts.TopP),
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return asst.ID, nil
}

func (c *OpenAIAssistants) CreateThread(ctx context.Context) (string, error) {
	th, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return th.ID, nil
}

func (c *OpenAIAssistants) CreateMessage(ctx context.Context, threadID string, role Role, text string) (string, error) {
	if threadID == "" {
		return "", errors.New("empty thread id")
	}
	msg, err := c.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRole(role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("add message: %w", err)
	}
	return msg.ID, nil
}

func (c *OpenAIAssistants) CreateRun(ctx context.Context, threadID string, assistantID string) (Run, error) {
	if assistantID == "" {
		return Run{}, errors.New("assistant is not initialized")
	}
	r, err := c.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return Run{}, fmt.Errorf("start run: %w", err)
	}
	return toRun(r), nil
}

func (c *OpenAIAssistants) GetRun(ctx context.Context, threadID string, runID string) (Run, error) {
	r, err := c.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return toRun(r), nil
}

func (c *OpenAIAssistants) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	// Проходим все страницы, как делает for-await по курсору в SDK.
	iter := c.client.Beta.Threads.Messages.ListAutoPaging(ctx, threadID, openai.BetaThreadMessageListParams{})
	var out []Message
	for iter.Next() {
		m := iter.Current()
		msg := Message{ID: m.ID, Role: Role(m.Role), Content: make([]Content, 0, len(m.Content))}
		for _, item := range m.Content {
			msg.Content = append(msg.Content, Content{
				Type:   ContentType(item.Type),
				Text:   item.Text.Value,
				FileID: item.ImageFile.FileID,
			})
		}
		out = append(out, msg)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func (c *OpenAIAssistants) DeleteAssistant(ctx context.Context, assistantID string) error {
	if _, err := c.client.Beta.Assistants.Delete(ctx, assistantID); err != nil {
		return fmt.Errorf("delete assistant: %w", err)
	}
	return nil
}

func (c *OpenAIAssistants) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := c.client.Beta.Threads.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

func toRun(r *openai.Run) Run {
	return Run{
		ID:        r.ID,
		Status:    RunStatus(r.Status),
		LastError: r.LastError.Message,
	}
}

// ErrorMessage текст ошибки для клиента прокси. Для ошибок API это "<код> <сообщение>"
// без метода и URL запроса, остальные ошибки возвращаются как есть.
func ErrorMessage(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Sprintf("%d %s", apiErr.StatusCode, apiErr.Message)
	}
	return err.Error()
}
