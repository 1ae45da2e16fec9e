package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TLS             bool          `yaml:"tls"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"user"`
	Password    string `yaml:"password"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
	BaseURL     string `yaml:"base_url"`
}

// PortalConfig は未認証ポータルの挙動
type PortalConfig struct {
	Timezone            string `yaml:"timezone"`
	AllowEmployeeLookup bool   `yaml:"allow_employee_lookup"`
	LookupPerMinute     int    `yaml:"lookup_per_minute"`
	SubmitPerMinute     int    `yaml:"submit_per_minute"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Auth        AuthConfig     `yaml:"auth"`
	SMTP        SMTPConfig     `yaml:"smtp"`
	Portal      PortalConfig   `yaml:"portal"`
	Log         LogConfig      `yaml:"log"`
	Certificate Certs          `yaml:"certificate"`
}

// Load reads the YAML file at path, then applies overrides from the
// environment (a .env file next to the binary is loaded first when present).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Mode: "dev",
		Server: ServerConfig{
			Addr:            ":8080",
			AllowOrigins:    []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		DB:   DatabaseConfig{Host: "127.0.0.1", Port: 3306, DBName: "simapro"},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
		Portal: PortalConfig{
			Timezone:            "UTC",
			AllowEmployeeLookup: true,
			LookupPerMinute:     30,
			SubmitPerMinute:     10,
		},
		Log: LogConfig{Level: "info", Format: "text", Output: "stdout"},
	}
}

func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode must be dev or release, got %q", c.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if _, err := time.LoadLocation(c.Portal.Timezone); err != nil {
		return fmt.Errorf("portal.timezone: %w", err)
	}
	return nil
}

// Location returns the portal timezone; Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Portal.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyEnv(c *Config) {
	setString(&c.DB.Host, "DB_HOST")
	setInt(&c.DB.Port, "DB_PORT")
	setString(&c.DB.Username, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.DBName, "DB_NAME")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.Mode, "APP_MODE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
