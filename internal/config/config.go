package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigPathEnv = "PRICE_PROXY_CONFIG_PATH"

type PriceProxyConfig struct {
	Env          string `yaml:"env" env:"PRICE_PROXY_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	Upstream     `yaml:"upstream"`
	Proxy        `yaml:"proxy"`
	Market       `yaml:"market"`
	KafkaService `yaml:"kafka"`
	Journal      `yaml:"journal"`
	LogConfig    `yaml:"log_config"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"PRICE_PROXY_HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PRICE_PROXY_HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"PRICE_PROXY_GRPC_HOST" env-default:"0.0.0.0"`
	// Empty port disables the gRPC health server.
	Port string `yaml:"port" env:"PRICE_PROXY_GRPC_PORT" env-default:"50061"`
}

type Upstream struct {
	BaseURL      string        `yaml:"base_url" env:"PRICE_PROXY_UPSTREAM_URL" env-default:"https://api.coingecko.com/api/v3"`
	UserAgent    string        `yaml:"user_agent" env:"PRICE_PROXY_USER_AGENT" env-default:"NeonSwap/1.0.0 (https://neonswap.vercel.app)"`
	Timeout      time.Duration `yaml:"timeout" env:"PRICE_PROXY_UPSTREAM_TIMEOUT" env-default:"10s"`
	PreCallDelay time.Duration `yaml:"pre_call_delay" env-default:"100ms"`
}

type Proxy struct {
	CacheTTL   time.Duration `yaml:"cache_ttl" env:"PRICE_PROXY_CACHE_TTL" env-default:"60s"`
	MaxBackoff time.Duration `yaml:"max_backoff" env-default:"300s"`
	JitterSpan time.Duration `yaml:"jitter_span" env-default:"10s"`
}

type Market struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env:"PRICE_PROXY_MARKET_CACHE_TTL" env-default:"60s"`
	// Per client token bucket on the market routes.
	RateLimit  float64 `yaml:"rate_limit" env:"PRICE_PROXY_MARKET_RATE_LIMIT" env-default:"5"`
	RateBurst  int     `yaml:"rate_burst" env:"PRICE_PROXY_MARKET_RATE_BURST" env-default:"10"`
	WarmupSpec string  `yaml:"warmup_spec" env:"PRICE_PROXY_MARKET_WARMUP" env-default:"@every 1m"`
}

type KafkaService struct {
	Brokers   []string `yaml:"brokers" env:"PRICE_PROXY_KAFKA_BROKERS" env-separator:","`
	Topic     string   `yaml:"topic" env:"PRICE_PROXY_KAFKA_TOPIC" env-default:"price-quotes"`
	QueueSize int      `yaml:"queue_size" env-default:"1024"`
}

type Journal struct {
	Dsn            string `yaml:"dsn" env:"PRICE_PROXY_JOURNAL_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"PRICE_PROXY_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"PRICE_PROXY_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"PRICE_PROXY_LOG_FORMAT" env-default:"json"`
}

func (s HTTPServer) Addr() string { return s.Host + ":" + s.Port }

func (s GRPCServer) Addr() string { return s.Host + ":" + s.Port }

func (k KafkaService) Enabled() bool { return len(k.Brokers) > 0 }

func (j Journal) Enabled() bool { return j.Dsn != "" }

// Load reads the YAML file at path, letting environment variables override it.
// An empty path builds the config from the environment and defaults alone.
func Load(path string) (*PriceProxyConfig, error) {
	var cfg PriceProxyConfig
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return &cfg, nil
}

// MustLoad resolves the config path from the flag value or PRICE_PROXY_CONFIG_PATH.
func MustLoad(path string) *PriceProxyConfig {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return cfg
}
