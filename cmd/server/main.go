package main

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/config"
	"AssistantProxy/internal/metrics"
	"AssistantProxy/internal/server"
	"AssistantProxy/internal/service/ask"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// HTTP-прокси к Azure OpenAI Assistants: POST /ask создаёт ассистента, thread и run,
// дожидается завершения и возвращает первый текстовый ответ или картинку.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"endpoint", cfg.AzureEndpoint,
		"apiVersion", cfg.AzureAPIVersion,
		"model", cfg.Assistant.Model,
		"pollTimeout", cfg.Poll.Timeout.String(),
	)

	// Один клиент на процесс, создаётся при старте и дальше не меняется.
	oClient := ai.NewAzureClient(cfg)
	m := metrics.New()
	svc := ask.New(cfg, ai.NewOpenAIAssistants(&oClient), ai.NewFileFetcher(&oClient, cfg), m, sugar)
	srv := server.New(cfg, svc, m, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		sugar.Fatalw("Failed to start server", "addr", srv.Addr(), "error", err)
	}

	// Graceful shutdown on Ctrl+C / SIGTERM
	<-srv.Done()
	sugar.Infow("server stopped")
}
