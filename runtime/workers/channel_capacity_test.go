package workers

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestChannelCapacityWorker_Warns_Above_Threshold(t *testing.T) {
	req := require.New(t)
	out := &syncBuffer{}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Given a channel filled at 80%
	commands := make(chan int, 10)
	for i := 0; i < 8; i++ {
		commands <- i
	}
	idle := make(chan int, 10)
	worker := NewChannelCapacityWorker(log, []NamedChannel{
		{Name: "commands", Channel: commands},
		{Name: "idle", Channel: idle},
		{Name: "not_a_channel", Channel: 42},
	}, 10*time.Millisecond, 75)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Channel is running out of capacity"))
	}, time.Second, 10*time.Millisecond)
	cancel()
	req.NoError(<-done)

	logs := out.String()
	req.Contains(logs, "name=commands")
	req.Contains(logs, "Provided object is not a channel")
	req.NotContains(logs, `running out of capacity" name=idle`)
}
