package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env     string `env:"ENV,default=dev"`
	DataDir string `env:"DATA_DIR,default=."`
	Server  struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
		Origins     string `env:"ALLOWED_ORIGINS,default=*"`
	}
	Auth struct {
		Secret string `env:"TOKEN_SECRET,default=dev-secret-change-me"`
	}
	Ledger struct {
		FlushInterval time.Duration `env:"FLUSH_INTERVAL,default=2s"`
		SweepInterval time.Duration `env:"SWEEP_INTERVAL,default=60s"`
	}
	Sonic struct {
		SweepInterval   time.Duration `env:"SONIC_SWEEP_INTERVAL,default=15s"`
		VisitorTimeout  time.Duration `env:"SONIC_VISITOR_TIMEOUT,default=90s"`
		OperatorTimeout time.Duration `env:"SONIC_OPERATOR_TIMEOUT,default=2h"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) DataDirectory() string {
	return c.DataDir
}
