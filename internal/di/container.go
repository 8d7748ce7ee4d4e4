package di

import (
	"imageqa/internal/adapter/openai"
	"imageqa/internal/adapter/storage/s3"
	"imageqa/internal/adapter/webpage"
	"imageqa/internal/app"
	"imageqa/internal/config"
	"imageqa/internal/database/client"
	"imageqa/internal/database/storage"
	"imageqa/internal/handler"
	"imageqa/internal/logger"
	"imageqa/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogCfg := logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
	slogger := logger.NewSlog(slogCfg)

	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация PostgreSQL клиента (с миграциями)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. Инициализация хранилища анализов
	analysisStorage := storage.NewPostgresStorage(dbClient.DB, slogger)

	// 4. Инициализация клиентов внешних сервисов
	fileStorage, err := s3.NewClient(cfg, slogger) // S3 / MinIO адаптер
	if err != nil {
		return nil, err
	}

	visionClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	webClient := webpage.NewClient(slogger)

	// 5. Инициализация бизнес-логики (usecase)
	analysisUseCase := usecase.NewAnalysisUseCase(
		analysisStorage,
		fileStorage,
		visionClient,
		webClient,
		webClient,
		slogger,
	)

	// 6. Инициализация HTTP-обработчика
	imageHandler := handler.NewImageHandler(analysisUseCase, cfg, slogger)

	// 7. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, dbClient.DB, imageHandler)

	slogger.Info("all dependencies initialized")
	return application, nil
}
