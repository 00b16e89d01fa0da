// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	GRPCAuthAddress         string `yaml:"grpc_auth_address" env:"GRPC_AUTH_ADDRESS" env-default:"localhost:50051"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	StorageMaxConns         int32  `yaml:"storage_max_conns" env:"STORAGE_MAX_CONNS" env-default:"20"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Payment                 `yaml:"payment"`
	Matching                `yaml:"matching"`
	Verification            `yaml:"verification"`
	Scheduler               `yaml:"scheduler"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress      string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword     string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser         string        `yaml:"user"`
	RedisDB           int           `yaml:"db"`
	RedisMaxRetries   int           `yaml:"max_retries"`
	RedisDialTimeout  time.Duration `yaml:"dial_timeout"`
	RedisTimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру очередей уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP структура для отправки писем
type SMTP struct {
	SMTPHost     string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom     string `yaml:"from" env:"SMTP_FROM"`
}

// Payment структура с настройками платёжного провайдера и тарифов.
// Суммы указываются в минимальных единицах валюты.
type Payment struct {
	PaymentAPIURL    string        `yaml:"api_url" env:"PAYMENT_API_URL" env-default:"https://api.stripe.com"`
	PaymentSecretKey string        `yaml:"secret_key" env:"PAYMENT_SECRET_KEY"`
	WebhookSecret    string        `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
	PaymentBaseURL   string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	Currency         string        `yaml:"currency" env-default:"usd"`
	PostingFee       int64         `yaml:"posting_fee" env-default:"500"`
	RevealFee        int64         `yaml:"reveal_fee" env-default:"100"`
	WebhookTolerance time.Duration `yaml:"webhook_tolerance" env-default:"5m"`
}

// Matching структура с настройками рекомендаций
type Matching struct {
	DefaultLimit int           `yaml:"default_limit" env-default:"6"`
	PoolCacheTTL time.Duration `yaml:"pool_cache_ttl" env-default:"1m"`
}

// Verification структура с настройками подтверждения почты
type Verification struct {
	VerificationTokenTTL time.Duration `yaml:"token_ttl" env-default:"24h"`
	VerificationBaseURL  string        `yaml:"base_url" env:"VERIFICATION_BASE_URL" env-default:"http://localhost:8080"`
}

// Scheduler структура с настройками периодической очистки
type Scheduler struct {
	SchedulerInterval time.Duration `yaml:"interval" env-default:"1h"`
	SessionMaxAge     time.Duration `yaml:"session_max_age" env-default:"24h"`
}

// RateLimit структура с настройками ограничения частоты запросов
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"rps" env-default:"10"`
	Burst             int     `yaml:"burst" env-default:"20"`
}

// Load читает конфиг из файла path с переопределениями из окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг из файла CONFIG_PATH и завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"GRPCAuthAddress: %s\n"+
			"MigrationsPath: %s\n"+
			"Redis: %s (db %d)\n"+
			"HTTPServer: %s timeout=%s idle=%s\n"+
			"RabbitMQ retries: %d delay=%s\n"+
			"SMTP: %s:%d from %s\n"+
			"Payment: %s currency=%s posting_fee=%d reveal_fee=%d\n"+
			"Matching: limit=%d pool_ttl=%s\n"+
			"Scheduler: interval=%s session_max_age=%s\n",
		c.Env,
		c.GRPCAuthAddress,
		c.MigrationsPath,
		c.RedisAddress, c.RedisDB,
		c.AddressHTTP, c.TimeoutHTTP, c.IdleTimeout,
		c.RabbitMQMaxRetries, c.RabbitMQRetryDelay,
		c.SMTPHost, c.SMTPPort, c.SMTPFrom,
		c.PaymentAPIURL, c.Currency, c.PostingFee, c.RevealFee,
		c.DefaultLimit, c.PoolCacheTTL,
		c.SchedulerInterval, c.SessionMaxAge,
	)
}
