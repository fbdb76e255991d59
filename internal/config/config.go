package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	Email    EmailConfig    `yaml:"email"`
	Storage  StorageConfig  `yaml:"storage"`
	Upload   UploadConfig   `yaml:"upload"`
	Posts    PostsConfig    `yaml:"posts"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Swagger  SwaggerConfig  `yaml:"swagger"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"` // development, test, production
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // mongo, postgres, memory
	URL    string `yaml:"url"`
	Name   string `yaml:"name"` // имя базы для mongo
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"`
	ResetCodeBytes int           `yaml:"reset_code_bytes"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
}

// AdminConfig - учетная запись администратора, создаваемая при старте
type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type EmailConfig struct {
	Driver       string `yaml:"driver"` // smtp, log
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
	ResetURL     string `yaml:"reset_url"` // ссылка на страницу сброса пароля клиента
}

type StorageConfig struct {
	Type      string `yaml:"type"`      // local, s3
	BasePath  string `yaml:"base_path"` // For local storage
	BaseURL   string `yaml:"base_url"`  // Public URL base
	Bucket    string `yaml:"bucket"`    // For S3
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // For S3-compatible hosts
}

type UploadConfig struct {
	MaxSize      int64 `yaml:"max_size"`      // Max file size in bytes
	MaxDimension int   `yaml:"max_dimension"` // Max width/height in pixels
	ImageQuality int   `yaml:"image_quality"` // JPEG quality (1-100)
}

type PostsConfig struct {
	PerPage int `yaml:"per_page"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SwaggerConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Env:             "development",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "mongo",
			URL:    "mongodb://localhost:27017",
			Name:   "blog",
		},
		JWT: JWTConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			ResetTokenTTL:  10 * time.Minute,
			ResetCodeBytes: 3,
			BcryptCost:     10,
		},
		Email: EmailConfig{
			Driver:   "log",
			SMTPPort: 587,
			FromName: "Blog",
			ResetURL: "http://localhost:3000/reset-password",
		},
		Storage: StorageConfig{
			Type:     "local",
			BasePath: "./uploads",
			BaseURL:  "/uploads",
		},
		Upload: UploadConfig{
			MaxSize:      3 * 1024 * 1024,
			MaxDimension: 1600,
			ImageQuality: 85,
		},
		Posts: PostsConfig{
			PerPage: 3,
		},
		Metrics: MetricsConfig{Enabled: true},
		Swagger: SwaggerConfig{Enabled: true},
	}
}

// Load читает .env, YAML файл и переменные окружения (в этом порядке приоритета по возрастанию).
// path == "" означает CONFIG_PATH или config/config.yaml; отсутствие файла по умолчанию не ошибка.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
		explicit = false
	}

	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// конфиг только из окружения
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и допустимые значения
func (c *Config) Validate() error {
	var problems []string

	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.JWT.TTL <= 0 {
		problems = append(problems, "jwt.ttl must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		problems = append(problems, "auth.reset_token_ttl must be positive")
	}
	if c.Auth.ResetCodeBytes <= 0 {
		problems = append(problems, "auth.reset_code_bytes must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port is invalid: %d", c.Server.Port))
	}
	if c.Posts.PerPage <= 0 {
		problems = append(problems, "posts.per_page must be positive")
	}
	if c.Upload.MaxSize <= 0 {
		problems = append(problems, "upload.max_size must be positive")
	}

	switch c.Database.Driver {
	case "mongo", "postgres", "memory":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver: %q", c.Database.Driver))
	}

	switch c.Email.Driver {
	case "log":
	case "smtp":
		if c.Email.SMTPHost == "" {
			problems = append(problems, "email.smtp_host is required for smtp driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported email.driver: %q", c.Email.Driver))
	}

	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			problems = append(problems, "storage.bucket is required for s3 storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported storage.type: %q", c.Storage.Type))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment - удобный хелпер для выбора режима логирования и ошибок
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Address возвращает host:port для HTTP сервера
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Name, "DATABASE_NAME")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Admin.Username, "FIRST_ADMIN_USERNAME")
	setString(&cfg.Admin.Email, "FIRST_ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "FIRST_ADMIN_PASSWORD")
	setString(&cfg.Email.Driver, "EMAIL_DRIVER")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "EMAIL_FROM")
	setString(&cfg.Email.ResetURL, "RESET_PASSWORD_URL")
	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.BaseURL, "STORAGE_BASE_URL")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")

	if err := setInt(&cfg.Server.Port, "SERVER_PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Email.SMTPPort, "SMTP_PORT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.JWT.TTL, "JWT_TTL"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
