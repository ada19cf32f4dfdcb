package infra

import (
	"github.com/tnqbao/gau-form-service/config"
	"github.com/tnqbao/gau-form-service/infra/produce"
)

type Infra struct {
	Redis     *RedisClient
	Postgres  *PostgresClient
	Logger    *LoggerClient
	Telemetry *TelemetryClient
	RabbitMQ  *RabbitMQClient
	Produce   *produce.Produce
	Minio     *MinioClient
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	telemetry := InitTelemetryClient(cfg.EnvConfig)
	if telemetry == nil {
		panic("Failed to initialize Telemetry service")
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel, cfg.EnvConfig.Notify.SigningKey)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	minio := InitMinioClient(cfg.EnvConfig)
	if minio == nil {
		panic("Failed to initialize MinIO service")
	}

	infraInstance = &Infra{
		Redis:     redis,
		Postgres:  postgres,
		Logger:    logger,
		Telemetry: telemetry,
		RabbitMQ:  rabbitMQ,
		Produce:   produceService,
		Minio:     minio,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
