package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/Foodgram/internal/config"
	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/usecase"
)

// Режимы запуска.
const (
	ModeServer   = "server"
	ModeWorker   = "worker"
	ModeLoadData = "loaddata"
)

// RunOptions заполняется из флагов командной строки.
type RunOptions struct {
	Mode           string
	IngredientsCSV string
	TagsCSV        string
}

type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	router   http.Handler
	recipes  usecase.RecipeUseCase
	catalog  usecase.CatalogUseCase
	consumer ports.ImageCleanupConsumer
	closers  []io.Closer
}

// NewApp собирает приложение. consumer может быть nil, если очередь не настроена;
// closers закрываются в обратном порядке при завершении.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	recipes usecase.RecipeUseCase,
	catalog usecase.CatalogUseCase,
	consumer ports.ImageCleanupConsumer,
	closers ...io.Closer,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		router:   router,
		recipes:  recipes,
		catalog:  catalog,
		consumer: consumer,
		closers:  closers,
	}
}

func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, opts RunOptions) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Shutdown()

	a.logger.Info("starting", "mode", opts.Mode)

	switch opts.Mode {
	case ModeServer:
		return runServer(ctx, ":"+a.cfg.ServerPort, a.router, a.logger)
	case ModeWorker:
		if a.consumer == nil {
			return errors.New("режим worker требует RABBITMQ_URL")
		}
		return runWorker(ctx, a.recipes, a.consumer, a.logger)
	case ModeLoadData:
		return runLoadData(ctx, a.catalog, opts, a.logger)
	}
	return fmt.Errorf("неизвестный режим: %s (используйте 'server', 'worker' или 'loaddata')", opts.Mode)
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", "error", err)
		}
	}
	a.closers = nil
	a.logger.Info("shutdown complete")
}
