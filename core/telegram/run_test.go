package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartRuntimeStopsAfterFailedStart(t *testing.T) {
	boom := errors.New("health: address in use")
	stopped := 0
	opts := RunOptions{
		OnStart: func(context.Context, Runtime) error { return boom },
		OnStop:  func(context.Context, Runtime) error { stopped++; return nil },
	}
	err := startRuntime(context.Background(), opts, Runtime{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stopped)

	closeErr := errors.New("close db")
	opts.OnStop = func(context.Context, Runtime) error { return closeErr }
	err = startRuntime(context.Background(), opts, Runtime{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, closeErr)
}

func TestStartRuntimeSkipsStopOnSuccess(t *testing.T) {
	stopped := 0
	opts := RunOptions{
		OnStart: func(context.Context, Runtime) error { return nil },
		OnStop:  func(context.Context, Runtime) error { stopped++; return nil },
	}
	assert.NoError(t, startRuntime(context.Background(), opts, Runtime{}))
	assert.NoError(t, startRuntime(context.Background(), RunOptions{}, Runtime{}))
	assert.Zero(t, stopped)
}
