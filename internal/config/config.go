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
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Авторизация
	JWTSecret  string        `env:"JWT_SECRET,required"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"720h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Кураторский аккаунт и его редакционные коллекции (категории ленты)
	CuratorUserName     string   `env:"CURATOR_USER_NAME" envDefault:"weplash"`
	EditorialCategories []string `env:"EDITORIAL_CATEGORIES" envSeparator:"," envDefault:"Wallpapers,Nature,People,Architecture,Travel,Animals"`
	DefaultProfileImage string   `env:"DEFAULT_PROFILE_IMAGE" envDefault:"https://images.weplash.com/profile/default.png"`

	UploadConcurrency int   `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
	MaxUploadSize     int64 `env:"MAX_UPLOAD_SIZE" envDefault:"20971520"`

	RateLimitRequests  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`
	// MinioPublicURL — адрес, по которому файлы доступны извне (в т.ч. для Imagga)
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"photo_enrichment_queue"`
		PrefetchCount     int    `env:"RABBITMQ_PREFETCH" envDefault:"4"`
	}

	Imagga struct {
		BaseURL           string        `env:"IMAGGA_BASE_URL" envDefault:"https://api.imagga.com"`
		APIKey            string        `env:"IMAGGA_API_KEY"`
		APISecret         string        `env:"IMAGGA_API_SECRET"`
		Timeout           time.Duration `env:"IMAGGA_TIMEOUT" envDefault:"10s"`
		RequestsPerSecond float64       `env:"IMAGGA_RPS" envDefault:"2"`
		FailureThreshold  uint32        `env:"IMAGGA_BREAKER_FAILURES" envDefault:"5"`
		BreakerTimeout    time.Duration `env:"IMAGGA_BREAKER_TIMEOUT" envDefault:"30s"`
	}

	Kakao struct {
		UserInfoURL string        `env:"KAKAO_USER_INFO_URL" envDefault:"https://kapi.kakao.com/v2/user/me"`
		Timeout     time.Duration `env:"KAKAO_TIMEOUT" envDefault:"5s"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.MinioPublicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		cfg.MinioPublicURL = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}
	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = 1
	}

	return &cfg, nil
}
