package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Run_ExecutesInitialAndPeriodicPasses(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<p>content</p>"))
	}))
	t.Cleanup(server.Close)

	service := newTestService(t, serviceConfig(server.URL), newMemoryStateStore(), &capturingNotifier{})
	scheduler := NewScheduler(service, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()

	err := scheduler.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, hits.Load(), int32(2))
}

func TestScheduler_Run_KeepsGoingAfterFailedPass(t *testing.T) {
	server, _ := newMutableServer(t, "<p>content</p>")

	store := newMemoryStateStore()
	store.getErr = errors.New("disk corrupted")
	service := newTestService(t, serviceConfig(server.URL), store, &capturingNotifier{})
	scheduler := NewScheduler(service, 30*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := scheduler.Run(ctx)
	require.NoError(t, err)
	// Every pass failed, yet the loop survived until cancellation.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestNewScheduler_DefaultsNonPositiveInterval(t *testing.T) {
	service := newTestService(t, serviceConfig(), newMemoryStateStore(), &capturingNotifier{})

	scheduler := NewScheduler(service, 0, zerolog.Nop())

	assert.Equal(t, time.Hour, scheduler.interval)
}
