package internal

import (
	"livechat/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	// Given a working directory without .env
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://chat.example.com")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")

	config, err := LoadConfig()
	req.NoError(err)
	req.Equal("localhost", config.Host)
	req.Equal(9090, config.Port)
	req.Equal("localhost:9090", config.Address())
	req.Equal(256, config.ConnectionBufferSize)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Nil(config.LimitMessages)
	req.Equal([]string{"http://localhost:3000", "https://chat.example.com"}, config.Origins())

	loc, err := config.Location()
	req.NoError(err)
	req.Equal(time.UTC, loc)
}

func TestLoadConfig_Limit_Messages(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("LIMIT_MESSAGES", "50")

	config, err := LoadConfig()
	req.NoError(err)
	req.NotNil(config.LimitMessages)
	req.Equal(50, *config.LimitMessages)
}

func TestLoadConfig_Invalid(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	t.Run("Threshold out of range", func(t *testing.T) {
		t.Setenv("LOW_CAPACITY_THRESHOLD", "150")
		_, err := LoadConfig()
		req.ErrorIs(err, errors.ErrInvalidConfig)
	})

	t.Run("Unknown time zone", func(t *testing.T) {
		t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus_Mons")
		_, err := LoadConfig()
		req.ErrorIs(err, errors.ErrInvalidConfig)
	})

	t.Run("Not a number", func(t *testing.T) {
		t.Setenv("PORT", "http")
		_, err := LoadConfig()
		req.ErrorIs(err, errors.ErrInvalidConfig)
	})
}
