package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"` // no sqlite3 é o caminho do arquivo
	DbPass   string `json:"db_pass"`

	Security struct {
		JwtSecret             string `json:"jwt_secret"`
		AccessTokenTTLMinutes int    `json:"access_token_ttl_minutes"`
		BcryptCost            int    `json:"bcrypt_cost"`
	} `json:"security"`

	CORSOrigins []string `json:"cors_origins"`

	Redis   RedisConfig   `json:"redis"`
	Storage StorageConfig `json:"storage"`
	Worker  WorkerConfig  `json:"worker"`
}

// RedisConfig: cache da flag de completude usada na navegação.
// Addr vazio desliga o cache.
type RedisConfig struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type StorageConfig struct {
	Driver        string `json:"driver"` // "local" ou "s3"
	LocalDir      string `json:"local_dir"`
	PublicBaseURL string `json:"public_base_url"`
	Bucket        string `json:"bucket"`
	Region        string `json:"region"`
	Endpoint      string `json:"endpoint"`
}

type WorkerConfig struct {
	CompletenessIntervalSeconds int `json:"completeness_interval_seconds"`
	BatchSize                   int `json:"batch_size"`
}

// Load reads the JSON file at path (optional), then applies .env and
// environment overrides and fills defaults.
func Load(path string) (Configuration, error) {
	var c Configuration

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(b, &c); err != nil {
				return c, err
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config: %s não encontrado, usando variáveis de ambiente", path)
		default:
			return c, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: erro ao ler .env: %v", err)
	}
	applyEnv(&c)
	applyDefaults(&c)
	return c, nil
}

func applyEnv(c *Configuration) {
	setString(&c.ApiPort, "PORT")
	setString(&c.Database, "DATABASE")
	setString(&c.DbHost, "DB_HOST")
	setString(&c.DbPort, "DB_PORT")
	setString(&c.DbUser, "DB_USER")
	setString(&c.DbName, "DB_NAME")
	setString(&c.DbPass, "DB_PASS")
	setString(&c.Security.JwtSecret, "JWT_SECRET")
	setInt(&c.Security.AccessTokenTTLMinutes, "JWT_ACCESS_TTL_MINUTES")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.Region, "AWS_REGION")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
}

// defaults (pra evitar nil/zero chato)
func applyDefaults(c *Configuration) {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.Database == "sqlite3" && c.DbName == "" {
		c.DbName = "db/database.db"
	}
	if c.Security.AccessTokenTTLMinutes <= 0 {
		c.Security.AccessTokenTTLMinutes = 24 * 60
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 10
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 24 * 60 * 60
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "uploads"
	}
	if c.Storage.PublicBaseURL == "" && c.Storage.Driver == "local" {
		c.Storage.PublicBaseURL = "http://localhost:" + c.ApiPort + "/uploads"
	}
	if c.Worker.CompletenessIntervalSeconds <= 0 {
		c.Worker.CompletenessIntervalSeconds = 30
	}
	if c.Worker.BatchSize <= 0 {
		c.Worker.BatchSize = 50
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
