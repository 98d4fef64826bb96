package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client держит соединения с PostgreSQL:
// sqlx (lib/pq) для сырых запросов и gorm для репозиториев.
type Client struct {
	DB     *sqlx.DB
	Gorm   *gorm.DB
	logger *slog.Logger
}

// NewClient инициализирует подключения к PostgreSQL
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	gormDB, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		_ = db.Close()
		logger.Error("failed to open gorm connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения gorm: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось получить пул gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("PostgreSQL connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, Gorm: gormDB, logger: logger}, nil
}

// Ping проверяет оба пула соединений.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlx ping: %w", err)
	}
	sqlDB, err := c.Gorm.DB()
	if err != nil {
		return fmt.Errorf("gorm pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("gorm ping: %w", err)
	}
	return nil
}

// ApplyMigrations применяет все доступные миграции к бд
func ApplyMigrations(migrationsPath, databaseURL string, logger *slog.Logger) error {
	start := time.Now()

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations are up to date")
			return nil
		}
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	logger.Info("migrations applied", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) Close() error {
	start := time.Now()

	var errs []error
	if err := c.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := c.Gorm.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}

	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
