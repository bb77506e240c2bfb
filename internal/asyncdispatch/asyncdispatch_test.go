package asyncdispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushRunsOnDispatchGoroutine(t *testing.T) {
	q := &Queue{}
	q.Initialize()
	q.Start()
	defer q.Close()

	done := make(chan struct{})
	require.True(t, q.Push(func() error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}

func TestPushInvokesOnError(t *testing.T) {
	var mu sync.Mutex
	var gotErr error

	q := &Queue{
		OnError: func(_ context.Context, err error) {
			mu.Lock()
			gotErr = err
			mu.Unlock()
		},
	}
	q.Initialize()
	q.Start()
	defer q.Close()

	wantErr := errors.New("boom")
	require.True(t, q.Push(func() error { return wantErr }))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr == wantErr
	}, time.Second, time.Millisecond)
}

func TestPushAfterCloseFails(t *testing.T) {
	q := &Queue{}
	q.Initialize()
	q.Start()
	q.Close()

	require.False(t, q.Push(func() error { return nil }))
}
