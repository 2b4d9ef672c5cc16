package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessage_DisplayTime(t *testing.T) {
	req := require.New(t)
	loc := time.FixedZone("UTC+2", 2*60*60)

	evening := Message{CreatedAt: time.Date(2024, 3, 1, 19, 5, 0, 0, time.UTC)}
	morning := Message{CreatedAt: time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)}
	noon := Message{CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	midnight := Message{CreatedAt: time.Date(2024, 3, 1, 0, 9, 0, 0, time.UTC)}

	req.Equal("7:05 PM", evening.DisplayTime(time.UTC))
	req.Equal("9:05 PM", evening.DisplayTime(loc))
	req.Equal("7:30 AM", morning.DisplayTime(time.UTC))
	req.Equal("12:00 PM", noon.DisplayTime(time.UTC))
	req.Equal("12:09 AM", midnight.DisplayTime(time.UTC))
}

func TestIdentity_IsAbsent(t *testing.T) {
	require.True(t, Identity("").IsAbsent())
	require.False(t, Identity("Alice").IsAbsent())
}
