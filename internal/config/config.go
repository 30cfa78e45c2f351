package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"auction_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"auction_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"auction_db"`

	BidMinIncrement float64 `env:"BID_MIN_INCREMENT" envDefault:"1" validate:"min=0"`

	// Trailing windows and hard limits for the attempt throttles. The cache
	// TTLs bound how stale a served counter may be.
	BidRateLimit      int           `env:"BID_RATE_LIMIT"       envDefault:"10" validate:"min=1"`
	BidRateWindow     time.Duration `env:"BID_RATE_WINDOW"      envDefault:"60s"`
	BidRateCacheTTL   time.Duration `env:"BID_RATE_CACHE_TTL"   envDefault:"30s"`
	LoginRateLimit    int           `env:"LOGIN_RATE_LIMIT"     envDefault:"5" validate:"min=1"`
	LoginRateWindow   time.Duration `env:"LOGIN_RATE_WINDOW"    envDefault:"15m"`
	LoginRateCacheTTL time.Duration `env:"LOGIN_RATE_CACHE_TTL" envDefault:"60s"`

	WinnerSweepInterval time.Duration `env:"WINNER_SWEEP_INTERVAL" envDefault:"30s"`

	JwtSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me" validate:"min=8"`
	TokenTTL  time.Duration `env:"TOKEN_TTL"  envDefault:"24h"`

	SmtpHost    string `env:"SMTP_HOST" envDefault:"localhost"`
	SmtpPort    uint16 `env:"SMTP_PORT" envDefault:"1025"`
	MailFrom    string `env:"MAIL_FROM" envDefault:"auctions@localhost"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
