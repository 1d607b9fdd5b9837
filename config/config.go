package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend selectors for the pluggable infrastructure layers.
const (
	DatabaseBackendPostgres = "postgres"
	DatabaseBackendMemory   = "memory"

	StorageBackendLocal = "local"
	StorageBackendMinio = "minio"
	StorageBackendGCS   = "gcs"

	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

type Config struct {
	ServerPort int
	Auth       AuthConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	MQ         MQConfig
}

// AuthConfig carries the token signing secret and the seeded ops account.
type AuthConfig struct {
	JWTSecret   string
	OpsEmail    string
	OpsName     string
	OpsPassword string
}

type DatabaseConfig struct {
	Backend  string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type StorageConfig struct {
	Backend  string
	LocalDir string
	Minio    MinioConfig
	GCS      GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			OpsEmail:    getEnv("OPS_EMAIL", ""),
			OpsName:     getEnv("OPS_NAME", "Ops User"),
			OpsPassword: getEnv("OPS_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			Backend:  getEnv("DB_BACKEND", DatabaseBackendPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "docdrop"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "docdrop_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", StorageBackendLocal),
			LocalDir: getEnv("UPLOAD_DIR", "uploads"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "docdrop"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		MQ: MQConfig{
			Backend: getEnv("MQ_BACKEND", MQBackendNone),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "true" || value == "1"
	}
	return defaultValue
}
