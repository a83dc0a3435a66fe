package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
	}
	Database struct {
		Driver     string // postgres | sqlite
		SQLitePath string
	}
	Storage struct {
		Backend      string // disk | minio
		Directory    string
		NameAttempts int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	Lock struct {
		Backend    string // local | redis
		TTLSeconds int
	}
	RabbitMQ struct {
		Enabled  bool
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		Bucket       string
		UseSSL       bool
	}
	HTTP struct {
		Addr    string
		Prefix  string
		BaseURL string
	}
	Reconcile struct {
		Enabled       bool
		Cron          string
		RemoveOrphans bool
	}
	Grafana struct {
		Enabled      bool
		OTLPEndpoint string
		ServiceName  string
	}

	Environment struct {
		Mode  string
		Group string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	config.Database.Driver = strings.ToLower(os.Getenv("DB_DRIVER"))
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	config.Database.SQLitePath = os.Getenv("SQLITE_PATH")
	if config.Database.SQLitePath == "" {
		config.Database.SQLitePath = "filestore.db"
	}

	// Blob storage
	config.Storage.Backend = strings.ToLower(os.Getenv("BLOB_BACKEND"))
	if config.Storage.Backend == "" {
		config.Storage.Backend = "disk"
	}
	config.Storage.Directory = os.Getenv("STORAGE_DIR")
	if config.Storage.Directory == "" {
		config.Storage.Directory = "storage"
	}
	if val := os.Getenv("NAME_ATTEMPTS"); val != "" {
		fmt.Sscanf(val, "%d", &config.Storage.NameAttempts)
	}
	if config.Storage.NameAttempts <= 0 {
		config.Storage.NameAttempts = 64
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	if config.Redis.RedisHost == "" {
		config.Redis.RedisHost = "localhost"
	}
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	config.Lock.Backend = strings.ToLower(os.Getenv("LOCK_BACKEND"))
	if config.Lock.Backend == "" {
		config.Lock.Backend = "local"
	}
	config.Lock.TTLSeconds, _ = strconv.Atoi(os.Getenv("LOCK_TTL_SECONDS"))
	if config.Lock.TTLSeconds <= 0 {
		config.Lock.TTLSeconds = 30
	}

	// RabbitMQ
	config.RabbitMQ.Enabled = parseBool(os.Getenv("RABBITMQ_ENABLED"), false)
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

	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "filestore"
	}
	config.Minio.UseSSL = parseBool(os.Getenv("MINIO_USE_SSL"), false)

	config.HTTP.Addr = os.Getenv("HTTP_ADDR")
	if config.HTTP.Addr == "" {
		config.HTTP.Addr = ":8080"
	}
	config.HTTP.Prefix = strings.TrimSuffix(os.Getenv("HTTP_PREFIX"), "/")
	config.HTTP.BaseURL = strings.TrimSuffix(os.Getenv("BASE_URL"), "/")
	if config.HTTP.BaseURL == "" {
		config.HTTP.BaseURL = config.HTTP.Prefix
	}

	config.Reconcile.Enabled = parseBool(os.Getenv("RECONCILE_ENABLED"), false)
	config.Reconcile.Cron = os.Getenv("RECONCILE_CRON")
	if config.Reconcile.Cron == "" {
		config.Reconcile.Cron = "0 * * * *" // hourly
	}
	config.Reconcile.RemoveOrphans = parseBool(os.Getenv("RECONCILE_REMOVE_ORPHANS"), false)

	// Grafana/OpenTelemetry
	config.Grafana.Enabled = parseBool(os.Getenv("OTEL_ENABLED"), false)
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	if grafanaEndpoint == "" {
		grafanaEndpoint = "localhost:4318"
	}
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-filestore-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	return &config
}

func parseBool(val string, fallback bool) bool {
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

// Validate rejects backend combinations that cannot keep blob names unique.
func (c *EnvConfig) Validate() error {
	// MinIO has no exclusive put, so concurrent creators must share the Redis name lock
	if c.Storage.Backend == "minio" && c.Lock.Backend != "redis" {
		return fmt.Errorf("BLOB_BACKEND=minio requires LOCK_BACKEND=redis, got %q", c.Lock.Backend)
	}
	return nil
}
