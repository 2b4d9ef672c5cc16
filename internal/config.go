package internal

import (
	"fmt"
	"livechat/errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost" validate:"required"`
	Port                 int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger" validate:"required"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024" validate:"min=1"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256" validate:"min=1"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=1"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*" validate:"required"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"min=0"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s" validate:"min=0"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=80" validate:"min=1,max=100"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES" validate:"omitempty,min=1"`
	DisplayTimezone      string        `env:"DISPLAY_TIMEZONE,default=Local" validate:"required"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"min=0"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	_, err := c.Location()
	return err
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Location is the time zone used to render message times.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: DISPLAY_TIMEZONE %q: %w", errors.ErrInvalidConfig, c.DisplayTimezone, err)
	}
	return loc, nil
}

// Origins splits ALLOWED_ORIGINS on commas. "*" allows every origin.
func (c Config) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowedOrigins, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	})
	return lo.Compact(origins)
}
