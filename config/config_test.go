package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.ServerPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.ServerPort)
	}
	if cfg.Database.Backend != DatabaseBackendPostgres {
		t.Fatalf("unexpected default db backend: %q", cfg.Database.Backend)
	}
	if cfg.Storage.Backend != StorageBackendLocal {
		t.Fatalf("unexpected default storage backend: %q", cfg.Storage.Backend)
	}
	if cfg.MQ.Backend != MQBackendNone {
		t.Fatalf("unexpected default mq backend: %q", cfg.MQ.Backend)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("DB_BACKEND", DatabaseBackendMemory)
	t.Setenv("DB_USE_SSL", "true")
	t.Setenv("STORAGE_BACKEND", StorageBackendMinio)
	t.Setenv("MINIO_BUCKET", "documents")
	t.Setenv("MQ_BACKEND", MQBackendRabbitMQ)
	t.Setenv("RABBITMQ_PREFETCH_COUNT", "5")

	cfg := LoadConfig()

	if cfg.ServerPort != 9090 {
		t.Fatalf("unexpected port: %d", cfg.ServerPort)
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Fatalf("unexpected secret: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Database.Backend != DatabaseBackendMemory {
		t.Fatalf("unexpected db backend: %q", cfg.Database.Backend)
	}
	if !cfg.Database.UseSSL {
		t.Fatalf("expected ssl flag to be read")
	}
	if cfg.Storage.Backend != StorageBackendMinio || cfg.Storage.Minio.Bucket != "documents" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.MQ.Backend != MQBackendRabbitMQ || cfg.MQ.RabbitMQ.PrefetchCount != 5 {
		t.Fatalf("unexpected mq config: %+v", cfg.MQ)
	}
}
