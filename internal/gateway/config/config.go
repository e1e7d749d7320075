package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string
	Env  string
	// BackendURL is the base URL of the analysis backend services.
	BackendURL string
	// PublicURL prefixes links handed to the browser, such as exports.
	PublicURL   string
	DatabaseURL string
	BoltPath    string
	Export      ExportConfig
	// LayoutFile optionally points at a viper readable layout file.
	LayoutFile string
	Layout     Layout
}

type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// CanUseS3 reports whether the S3 settings are complete.
func (c ExportConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

// Load reads .env, then the environment, then the layout file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := defaults(env)
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Addr = NormalizeAddr(v)
	}
	cfg.BackendURL = firstNonEmpty(strings.TrimSpace(os.Getenv("BACKEND_URL")), cfg.BackendURL)
	cfg.PublicURL = firstNonEmpty(strings.TrimSpace(os.Getenv("PUBLIC_URL")), cfg.PublicURL)
	cfg.DatabaseURL = firstNonEmpty(strings.TrimSpace(os.Getenv("DATABASE_URL")), cfg.DatabaseURL)
	cfg.BoltPath = firstNonEmpty(strings.TrimSpace(os.Getenv("STATE_BOLT_PATH")), cfg.BoltPath)
	cfg.LayoutFile = firstNonEmpty(strings.TrimSpace(os.Getenv("LAYOUT_FILE")), cfg.LayoutFile)
	cfg.Export = loadExportConfig(env, cfg.Export)

	if err := cfg.LoadLayout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLayout reloads Layout from LayoutFile. Call it again after flags
// changed the file.
func (c *Config) LoadLayout() error {
	l, err := LoadLayout(c.LayoutFile)
	if err != nil {
		return err
	}
	c.Layout = l
	return nil
}

func defaults(env string) *Config {
	if strings.EqualFold(env, "local") {
		c := localConfig()
		c.Env = env
		return &c
	}
	return &Config{
		Addr:       ":8080",
		Env:        env,
		BackendURL: "http://localhost:6251",
		Export:     ExportConfig{Region: "us-east-1", Bucket: "codecompass-exports", Prefix: "diagrams"},
	}
}

func loadExportConfig(env string, base ExportConfig) ExportConfig {
	endpoint := firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_ENDPOINT")), base.Endpoint)
	return ExportConfig{
		Enabled:   base.Enabled || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_REGION")), base.Region),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_ACCESS_KEY")), base.AccessKey),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_SECRET_KEY")), base.SecretKey),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_BUCKET")), base.Bucket),
		Prefix:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_PREFIX")), base.Prefix),
		UseSSL:    resolveUseSSL(env),
	}
}

func resolveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("EXPORT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

// NormalizeAddr accepts "8080" as well as ":8080" and "host:8080".
func NormalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
