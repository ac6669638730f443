package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool   `env:"DEBUG_MODE"` // Development-логгер zap вместо production
	Port      string `env:"PORT"`       // Порт HTTP-сервера

	// Подключение к Azure OpenAI. Все три значения обязательны.
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey     string `env:"AZURE_OPENAI_KEY"`
	AzureAPIVersion string `env:"OPENAI_API_VERSION"`

	Assistant AssistantConfig // Статическая конфигурация ассистента, одна на все запросы
	Poll      PollConfig      // Опрос статуса run
	Files     FilesConfig     // Загрузка содержимого файлов (картинки code interpreter)

	CleanupResources bool `env:"CLEANUP_RESOURCES"` // Удалять ассистента и thread после ответа
}

// AssistantConfig параметры ассистента, создаваемого на каждый запрос.
type AssistantConfig struct {
	Model        string  `env:"ASSISTANT_MODEL"`
	Name         string  `env:"ASSISTANT_NAME"`
	Instructions string  `env:"ASSISTANT_INSTRUCTIONS"`
	Temperature  float64 `env:"ASSISTANT_TEMPERATURE"`
	TopP         float64 `env:"ASSISTANT_TOP_P"`
}

// PollConfig настройки ожидания завершения run.
type PollConfig struct {
	Interval    time.Duration `env:"POLL_INTERVAL"`     // Первая пауза между запросами статуса
	MaxInterval time.Duration `env:"POLL_MAX_INTERVAL"` // Потолок паузы при backoff
	Backoff     float64       `env:"POLL_BACKOFF"`      // Множитель паузы
	Timeout     time.Duration `env:"POLL_TIMEOUT"`      // 0 — без ограничения
	MaxAttempts int           `env:"POLL_MAX_ATTEMPTS"` // 0 — без ограничения
}

// FilesConfig хост, с которого скачивается содержимое файлов. Префикс "/openai" добавляет клиент.
// Пустой BaseURL (в том числе FILES_BASE_URL="") — используется AzureEndpoint.
type FilesConfig struct {
	BaseURL    string        `env:"FILES_BASE_URL"`
	APIVersion string        `env:"FILES_API_VERSION"`
	Timeout    time.Duration `env:"FILES_TIMEOUT"`
}

const defaultInstructions = "You are here to visualize and generate charts and graphs. You are also going to process Excel files that is used for summarization."

// Defaults базовая конфигурация прокси: порт 5000, статичный ассистент и опрос раз в секунду.
// Load накладывает поверх неё .env, окружение и флаги.
func Defaults() *Config {
	return &Config{
		DebugMode: false,
		Port:      "5000",
		Assistant: AssistantConfig{
			Model:        "gpt-4o-mini-2",
			Name:         "Assistant129",
			Instructions: defaultInstructions,
			Temperature:  1,
			TopP:         1,
		},
		Poll: PollConfig{
			Interval:    time.Second,
			MaxInterval: time.Second, // по умолчанию фиксированный шаг в 1 секунду
			Backoff:     2,
			Timeout:     10 * time.Minute,
			MaxAttempts: 0,
		},
		Files: FilesConfig{
			// Хост зашит так же, как в исходном сервисе; переопределяется через FILES_BASE_URL
			BaseURL:    "https://azure2234.openai.azure.com",
			APIVersion: "2024-05-01-preview",
			Timeout:    30 * time.Second,
		},
		CleanupResources: true,
	}
}

// Load загружает конфигурацию приложения: дефолты -> .env -> окружение -> флаги.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	// env пропускает пустые значения, явный FILES_BASE_URL="" включает fallback на эндпоинт.
	if v, ok := os.LookupEnv("FILES_BASE_URL"); ok && strings.TrimSpace(v) == "" {
		cfg.Files.BaseURL = ""
	}

	fs := flag.NewFlagSet("assistant-proxy", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "development-логгер и подробный вывод")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "порт HTTP-сервера")
	fs.StringVar(&cfg.AzureEndpoint, "azure-endpoint", cfg.AzureEndpoint, "эндпоинт Azure OpenAI (перекрывает AZURE_OPENAI_ENDPOINT)")
	fs.StringVar(&cfg.AzureAPIVersion, "api-version", cfg.AzureAPIVersion, "версия API Azure OpenAI")
	fs.StringVar(&cfg.Assistant.Model, "assistant-model", cfg.Assistant.Model, "deployment модели ассистента")
	fs.StringVar(&cfg.Assistant.Name, "assistant-name", cfg.Assistant.Name, "имя ассистента")
	fs.DurationVar(&cfg.Poll.Interval, "poll-interval", cfg.Poll.Interval, "первая пауза опроса статуса run, напр. 1s")
	fs.DurationVar(&cfg.Poll.MaxInterval, "poll-max-interval", cfg.Poll.MaxInterval, "максимальная пауза опроса")
	fs.Float64Var(&cfg.Poll.Backoff, "poll-backoff", cfg.Poll.Backoff, "множитель паузы опроса")
	fs.DurationVar(&cfg.Poll.Timeout, "poll-timeout", cfg.Poll.Timeout, "общий таймаут ожидания run; 0 — без ограничения")
	fs.IntVar(&cfg.Poll.MaxAttempts, "poll-max-attempts", cfg.Poll.MaxAttempts, "максимум запросов статуса; 0 — без ограничения")
	fs.StringVar(&cfg.Files.BaseURL, "files-base-url", cfg.Files.BaseURL, "хост для загрузки файлов (без /openai); пусто — эндпоинт Azure")
	fs.StringVar(&cfg.Files.APIVersion, "files-api-version", cfg.Files.APIVersion, "api-version для загрузки файлов")
	fs.BoolVar(&cfg.CleanupResources, "cleanup-resources", cfg.CleanupResources, "удалять ассистента и thread после ответа")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Files.BaseURL) == "" && cfg.AzureEndpoint != "" {
		cfg.Files.BaseURL = strings.TrimRight(cfg.AzureEndpoint, "/")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.AzureAPIKey) == "" {
		missing = append(missing, "AZURE_OPENAI_KEY")
	}
	if strings.TrimSpace(c.AzureEndpoint) == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if strings.TrimSpace(c.AzureAPIVersion) == "" {
		missing = append(missing, "OPENAI_API_VERSION")
	}
	if len(missing) > 0 {
		return fmt.Errorf("please set %s in your environment variables", strings.Join(missing, ", "))
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.Poll.Backoff < 1 {
		return errors.New("poll backoff must be >= 1")
	}
	return nil
}

// Addr адрес для прослушивания.
func (c *Config) Addr() string {
	if c.Port == "" {
		return ":5000"
	}
	return ":" + c.Port
}
