package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTExpiryH  int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	RailBaseURL  string `env:"RAIL_BASE_URL" envDefault:"http://mock-rail:8081/v1"`
	RailAPIKey   string `env:"RAIL_API_KEY" envDefault:""`
	RailTimeoutS int    `env:"RAIL_TIMEOUT_S" envDefault:"10"`

	OpenAIBaseURL  string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIKey      string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4-turbo"`
	OpenAITimeoutS int    `env:"OPENAI_TIMEOUT_S" envDefault:"15"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
