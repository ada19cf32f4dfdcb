package config

import (
	"os"
	"strconv"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
		Expire    int
	}
	CORS struct {
		AllowDomains string
	}
	Redis struct {
		Password string
		Database int
		Host     string
		Port     string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
	}
	Attachment struct {
		MaxSize int64  // Max decoded payload size in bytes
		Bucket  string // Bucket holding attachment content
	}
	OTP struct {
		ExpireSeconds int
	}
	Notify struct {
		SigningKey string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Expire, _ = strconv.Atoi(os.Getenv("JWT_EXPIRE"))
	if config.JWT.Expire == 0 {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Redis
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.Host = os.Getenv("REDIS_HOST")
	config.Redis.Port = os.Getenv("REDIS_PORT")
	if config.Redis.Port == "" {
		config.Redis.Port = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")

	// Attachments
	if sizeStr := os.Getenv("ATTACHMENT_MAX_SIZE"); sizeStr != "" {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
			config.Attachment.MaxSize = size
		} else {
			config.Attachment.MaxSize = 5242880 // Default 5MiB
		}
	} else {
		config.Attachment.MaxSize = 5242880 // Default 5MiB
	}
	config.Attachment.Bucket = os.Getenv("ATTACHMENT_BUCKET")
	if config.Attachment.Bucket == "" {
		config.Attachment.Bucket = "form-attachments"
	}

	// OTP
	config.OTP.ExpireSeconds, _ = strconv.Atoi(os.Getenv("OTP_EXPIRE_SECONDS"))
	if config.OTP.ExpireSeconds == 0 {
		config.OTP.ExpireSeconds = 300
	}

	config.Notify.SigningKey = os.Getenv("NOTIFY_SIGNING_KEY")

	// Grafana/OpenTelemetry
	config.Grafana.OTLPEndpoint = os.Getenv("GRAFANA_OTLP_ENDPOINT")
	if config.Grafana.OTLPEndpoint == "" {
		config.Grafana.OTLPEndpoint = "localhost:4318"
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-form-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	return &config
}
