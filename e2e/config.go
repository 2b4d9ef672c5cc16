package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LIVECHAT_ADDR is the host:port of a running server, the suite is skipped when empty
	Addr string `envconfig:"LIVECHAT_ADDR"`
	// E2E_DEBUG_JSON dumps every frame exchanged with the server
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_TIMEOUT bounds every wait for an event
	Timeout string `envconfig:"E2E_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
