package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BaseURL        string        `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434/v1"`
	APIKey         string        `env:"OLLAMA_API_KEY"  envDefault:"ollama"`
	Model          string        `env:"OLLAMA_MODEL"    envDefault:"llama3.2"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"   envDefault:"20s"`
	FetchMaxBytes  int64         `env:"FETCH_MAX_BYTES" envDefault:"5242880"`
}

func LoadConfig() Config {
	var cfg Config
	env.Must(cfg, env.Parse(&cfg))
	return cfg
}
