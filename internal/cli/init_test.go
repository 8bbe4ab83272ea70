package cli

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendsmart/internal/config"
	"spendsmart/internal/ledger/memory"
)

type fakeServer struct {
	stop      chan struct{}
	shutdown  bool
	listenErr error
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestServeUntilDone_ShutsDownOnCancel(t *testing.T) {
	logger := SetupLogger("error")
	srv := &fakeServer{stop: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeUntilDone(ctx, srv, logger, time.Second) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, srv.shutdown)
}

func TestServeUntilDone_ListenError(t *testing.T) {
	logger := SetupLogger("error")
	srv := &fakeServer{stop: make(chan struct{}), listenErr: errors.New("address in use")}

	err := ServeUntilDone(context.Background(), srv, logger, time.Second)
	assert.ErrorContains(t, err, "address in use")
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv(config.FileEnv, "")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "8088")

	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, "8088", cfg.Port)

	t.Setenv("PORT", "not-a-port")
	_, err = LoadAndValidateConfig()
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestOpenBackend_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.DataBackend = config.BackendMemory

	result, err := OpenBackend(context.Background(), cfg, SetupLogger("error"))
	require.NoError(t, err)
	defer result.Close()
	assert.IsType(t, &memory.Store{}, result.Store)
}
