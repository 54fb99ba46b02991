package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		// backend | postgres | static
		Source string `yaml:"source"`
		TTL    string `yaml:"ttl"`
	} `yaml:"catalog"`
	Analytics struct {
		MaxScore    int `yaml:"max_score"`
		TrendWindow int `yaml:"trend_window"`
	} `yaml:"analytics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	SaveTimeout string `yaml:"save_timeout"`
}

// Load reads YAML config from path, then applies .env and environment overrides.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	// .env is optional
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"QUIZZER_BACKEND_URL":  &cfg.Backend.URL,
		"QUIZZER_STORAGE_PATH": &cfg.Storage.Path,
		"QUIZZER_CATALOG":      &cfg.Catalog.Source,
		"REDIS_ADDR":           &cfg.Redis.Addr,
		"REDIS_PASSWORD":       &cfg.Redis.Password,
		"DATABASE_URL":         &cfg.Postgres.URL,
		"PORT":                 &cfg.Server.Port,
		"LOG_LEVEL":            &cfg.Log.Level,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "https://quizzer-backend-three.vercel.app"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath()
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quizzer.db"
	}
	return dir + string(os.PathSeparator) + "quizzer" + string(os.PathSeparator) + "quizzer.db"
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
