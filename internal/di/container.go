package di

import (
	"context"
	"fmt"
	"io"

	"github.com/GoArmGo/Foodgram/internal/adapter/storage/minio"
	"github.com/GoArmGo/Foodgram/internal/app"
	"github.com/GoArmGo/Foodgram/internal/auth"
	"github.com/GoArmGo/Foodgram/internal/config"
	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/database/client"
	"github.com/GoArmGo/Foodgram/internal/database/storage"
	"github.com/GoArmGo/Foodgram/internal/handler"
	"github.com/GoArmGo/Foodgram/internal/logger"
	"github.com/GoArmGo/Foodgram/internal/metrics"
	"github.com/GoArmGo/Foodgram/internal/rabbitmq"
	"github.com/GoArmGo/Foodgram/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. PostgreSQL и миграции
	if err := client.ApplyMigrations(cfg.MigrationsPath, cfg.DatabaseURL, slogger); err != nil {
		return nil, err
	}
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{dbClient}

	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	// 3. Хранилища
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)
	catalogStorage := storage.NewCatalogStorage(dbClient.Gorm, slogger)
	recipeStorage := storage.NewRecipeStorage(dbClient.Gorm, slogger)
	membershipStorage := storage.NewMembershipStorage(dbClient.Gorm, slogger)
	followStorage := storage.NewFollowStorage(dbClient.Gorm, slogger)
	shoppingListStorage := storage.NewShoppingListStorage(dbClient.DB, slogger)

	// 4. Файловое хранилище (S3 / MinIO)
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		return fail(err)
	}

	// 5. RabbitMQ опционален: без него изображения удаляются синхронно
	var (
		publisher ports.ImageCleanupPublisher
		consumer  ports.ImageCleanupConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rabbitClient)
		publisher = rabbitClient
		consumer = rabbitClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, image cleanup runs inline")
	}

	// 6. Бизнес-логика
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	uploadLimiter := make(chan struct{}, cfg.UploadConcurrency)

	recipeUseCase := usecase.NewRecipeUseCase(
		recipeStorage,
		catalogStorage,
		membershipStorage,
		followStorage,
		fileStorage,
		publisher,
		uploadLimiter,
		slogger,
	)
	catalogUseCase, err := usecase.NewCatalogUseCase(catalogStorage, cfg.CatalogCacheSize, slogger)
	if err != nil {
		return fail(fmt.Errorf("ошибка инициализации справочников: %w", err))
	}
	membershipUseCase := usecase.NewMembershipUseCase(recipeStorage, membershipStorage, slogger)
	followUseCase := usecase.NewFollowUseCase(userStorage, followStorage, recipeStorage, slogger)
	shoppingListUseCase := usecase.NewShoppingListUseCase(userStorage, membershipStorage, shoppingListStorage, slogger)
	userUseCase := usecase.NewUserUseCase(userStorage, followStorage, tokens, auth.PasswordHasher{}, slogger)

	// 7. HTTP
	router := handler.NewRouter(handler.Dependencies{
		Recipes:        recipeUseCase,
		Memberships:    membershipUseCase,
		Follows:        followUseCase,
		ShoppingList:   shoppingListUseCase,
		Catalog:        catalogUseCase,
		Users:          userUseCase,
		Tokens:         tokens,
		Metrics:        metrics.InitMetrics(),
		DB:             dbClient,
		PageSize:       cfg.PageSize,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         slogger,
	})

	slogger.Info("all dependencies initialized")
	return app.NewApp(cfg, slogger, router, recipeUseCase, catalogUseCase, consumer, closers...), nil
}
