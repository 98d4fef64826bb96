package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/GoArmGo/Foodgram/internal/app"
	"github.com/GoArmGo/Foodgram/internal/di"
)

func main() {
	var opts app.RunOptions
	flag.StringVar(&opts.Mode, "mode", app.ModeServer, "Режим запуска: server, worker или loaddata")
	flag.StringVar(&opts.IngredientsCSV, "ingredients", "", "CSV с ингредиентами для режима loaddata")
	flag.StringVar(&opts.TagsCSV, "tags", "", "CSV с тегами для режима loaddata")
	flag.Parse()

	// bootstrap-логгер (используется только на этапе инициализации)
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	bootstrapLogger.Info("starting application", "mode", opts.Mode)

	ctx := context.Background()

	application, err := di.BuildApp(ctx)
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	logger := application.LoggerIns()
	if err := application.Run(ctx, opts); err != nil {
		logger.Error("application run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
