package config

import (
	"os"
	"strings"
)

func localConfig() Config {
	return Config{
		Addr:       ":8081",
		BackendURL: "http://localhost:6251",
		PublicURL:  "http://localhost:8081",
		BoltPath:   firstNonEmpty(strings.TrimSpace(os.Getenv("STATE_BOLT_PATH")), "tmp/localstate.db"),
		Export: ExportConfig{
			Enabled:   true,
			Endpoint:  firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_MINIO_ENDPOINT")), "minio:9000"),
			Region:    "us-east-1",
			AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), "codecompass"),
			SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), "codecompass123"),
			Bucket:    "codecompass-exports",
			Prefix:    "diagrams",
		},
	}
}
