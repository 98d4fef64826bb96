package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"file://internal/database/migrations"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	JWT struct {
		Secret string        `env:"JWT_SECRET,required"`
		Issuer string        `env:"JWT_ISSUER" envDefault:"foodgram"`
		TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	}

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`
	// MinioPublicURL — базовый адрес для ссылок на изображения; по умолчанию строится из MINIO_ENDPOINT.
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`

	// Без RABBITMQ_URL изображения удаляются синхронно.
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"image_cleanup_queue"`
	}

	PageSize          int `env:"PAGE_SIZE" envDefault:"6"`
	CatalogCacheSize  int `env:"CATALOG_CACHE_SIZE" envDefault:"512"`
	UploadConcurrency int `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}
	return Parse()
}

// Parse читает конфигурацию только из окружения процесса.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.UploadConcurrency < 1 {
		cfg.UploadConcurrency = 1
	}
	if cfg.MinioPublicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		cfg.MinioPublicURL = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}

	return &cfg, nil
}
