package ai

import (
	"AssistantProxy/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// FileFetcher скачивает содержимое файлов (картинки code interpreter) через общий клиент,
// подменяя хост и api-version на время запроса. Azure-middleware клиента сам добавляет "/openai".
type FileFetcher struct {
	client     *openai.Client
	baseURL    string
	apiVersion string
	timeout    time.Duration
}

func NewFileFetcher(client *openai.Client, cfg *config.Config) *FileFetcher {
	return &FileFetcher{
		client:     client,
		baseURL:    strings.TrimRight(cfg.Files.BaseURL, "/") + "/",
		apiVersion: cfg.Files.APIVersion,
		timeout:    cfg.Files.Timeout,
	}
}

func (f *FileFetcher) options() []option.RequestOption {
	opts := []option.RequestOption{
		option.WithBaseURL(f.baseURL),
		option.WithQueryDel("api-version"),
		option.WithQuery("api-version", f.apiVersion),
	}
	if f.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(f.timeout))
	}
	return opts
}

// Fetch возвращает сырые байты файла. Ответ не 2xx — ошибка SDK.
func (f *FileFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, errors.New("empty file id")
	}
	resp, err := f.client.Files.Content(ctx, fileID, f.options()...)
	if err != nil {
		return nil, fmt.Errorf("file content: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	return b, nil
}
