package infra

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"

	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/infra/produce"
	"github.com/tnqbao/gau-filestore-service/service"
)

type Infra struct {
	Logger    *LoggerClient
	Telemetry *TelemetryClient
	Database  *DatabaseClient
	Disk      *DiskBlobStore
	Minio     *MinioClient
	Redis     *RedisClient
	RabbitMQ  *RabbitMQClient
	Produce   *produce.Produce

	// Blobs is whichever backend BLOB_BACKEND selected.
	Blobs service.BlobStore
	// Locker is local unless LOCK_BACKEND=redis.
	Locker service.Locker
	// Events is nil when RabbitMQ is disabled.
	Events service.EventPublisher
}

func InitInfra(cfg *config.Config) *Infra {
	env := cfg.EnvConfig
	if err := env.Validate(); err != nil {
		panic("Invalid configuration: " + err.Error())
	}

	telemetry := InitTelemetryClient(context.Background(), env)
	logger := InitLoggerClient(env, telemetry.LoggerProvider)

	database := InitDatabaseClient(env)
	if database == nil {
		panic("Failed to initialize Database service")
	}

	in := &Infra{
		Logger:    logger,
		Telemetry: telemetry,
		Database:  database,
	}

	switch env.Storage.Backend {
	case "disk":
		disk, err := NewDiskBlobStore(env.Storage.Directory)
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize disk storage: %v", err))
		}
		in.Disk = disk
		in.Blobs = disk
	case "minio":
		in.Minio = InitMinioClient(env)
		in.Blobs = in.Minio
	default:
		panic("Unsupported BLOB_BACKEND: " + env.Storage.Backend)
	}

	switch env.Lock.Backend {
	case "local":
		in.Locker = service.NewLocalLocker()
	case "redis":
		in.Redis = InitRedisClient(env)
		in.Locker = NewRedisLocker(in.Redis, time.Duration(env.Lock.TTLSeconds)*time.Second)
	default:
		panic("Unsupported LOCK_BACKEND: " + env.Lock.Backend)
	}

	if env.RabbitMQ.Enabled {
		in.RabbitMQ = InitRabbitMQClient(env)
		in.Produce = produce.InitProduce(in.RabbitMQ.Channel)
		in.Events = in.Produce.FileEventService
	}

	return in
}

func (in *Infra) Close(ctx context.Context) error {
	var errs []error
	if in.RabbitMQ != nil {
		errs = append(errs, in.RabbitMQ.Close())
	}
	if in.Redis != nil {
		errs = append(errs, in.Redis.Client.Close())
	}
	if in.Database != nil {
		errs = append(errs, in.Database.Close())
	}
	if in.Telemetry != nil {
		errs = append(errs, in.Telemetry.Shutdown(ctx))
	}
	return errors.Combine(errs...)
}
