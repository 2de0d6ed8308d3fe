package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	PublicURL         string        `mapstructure:"public_url"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AuthRatePerMinute int           `mapstructure:"auth_rate_per_minute"` // per client IP on login/register
	AuthRateBurst     int           `mapstructure:"auth_rate_burst"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, mysql or sqlite
	URL      string `mapstructure:"url"`
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
}

type UploadConfig struct {
	Backend   string      `mapstructure:"backend"` // local or minio
	Dir       string      `mapstructure:"dir"`
	MaxSizeMB int64       `mapstructure:"max_size_mb"`
	Minio     MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Nama     string `mapstructure:"nama"`
}

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is not set")

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                    "SERVER_PORT",
	"server.public_url":              "PUBLIC_URL",
	"server.allowed_origins":         "ALLOWED_ORIGINS",
	"database.driver":                "DATABASE_DRIVER",
	"database.url":                   "DATABASE_URL",
	"database.log_level":             "DATABASE_LOG_LEVEL",
	"auth.jwt_secret":                "JWT_SECRET",
	"auth.jwt_expiration":            "JWT_EXPIRATION",
	"upload.backend":                 "UPLOAD_BACKEND",
	"upload.dir":                     "UPLOAD_DIR",
	"upload.max_size_mb":             "UPLOAD_MAX_SIZE_MB",
	"upload.minio.endpoint":          "MINIO_ENDPOINT",
	"upload.minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
	"upload.minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
	"upload.minio.bucket":            "MINIO_BUCKET",
	"upload.minio.use_ssl":           "MINIO_USE_SSL",
	"log.level":                      "LOG_LEVEL",
	"log.file":                       "LOG_FILE",
	"smtp.host":                      "SMTP_HOST",
	"smtp.port":                      "SMTP_PORT",
	"smtp.user":                      "SMTP_USER",
	"smtp.pass":                      "SMTP_PASS",
	"smtp.from":                      "SMTP_FROM",
	"admin.email":                    "ADMIN_EMAIL",
	"admin.password":                 "ADMIN_PASSWORD",
	"admin.nama":                     "ADMIN_NAMA",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.auth_rate_per_minute", 30)
	v.SetDefault("server.auth_rate_burst", 15)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "postgresql://postgres@localhost:5432/projecthub")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiration", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "public/files")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.minio.bucket", "projecthub")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.password", "@Test123")
	v.SetDefault("admin.nama", "Admin User")
}

// Load reads configuration from defaults, an optional YAML file, a .env file in the
// working directory and finally the environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// ALLOWED_ORIGINS arrives as one comma separated string
	if len(cfg.Server.AllowedOrigins) == 1 && strings.Contains(cfg.Server.AllowedOrigins[0], ",") {
		cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins[0])
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	switch c.Upload.Backend {
	case "local":
	case "minio":
		if c.Upload.Minio.Endpoint == "" {
			return errors.New("config: MINIO_ENDPOINT is required for the minio upload backend")
		}
	default:
		return fmt.Errorf("config: unsupported upload backend %q", c.Upload.Backend)
	}
	if c.Auth.JWTExpiration <= 0 {
		return errors.New("config: JWT_EXPIRATION must be positive")
	}
	return nil
}

// MaxUploadBytes is the upload size limit in bytes, 10MB when unset.
func (c *Config) MaxUploadBytes() int64 {
	if c.Upload.MaxSizeMB <= 0 {
		return 10 << 20
	}
	return c.Upload.MaxSizeMB << 20
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
