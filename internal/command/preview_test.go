package command

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDebounce_SupersededRequestResolvesEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls int32
	preview := Debounce(50*time.Millisecond, func(_ context.Context, args Args, display Display, _ Bin) error {
		atomic.AddInt32(&calls, 1)
		display.Set("results for " + args.Object())
		return nil
	})

	ctx := context.Background()
	var first, second Buffer

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- preview(ctx, Args{RoleObject: {Text: "mat"}}, &first, nil)
	}()

	// Let the first request arm its timer.
	time.Sleep(10 * time.Millisecond)

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- preview(ctx, Args{RoleObject: {Text: "matrix"}}, &second, nil)
	}()

	select {
	case err := <-firstDone:
		assert.NoError(t, err)
		assert.Zero(t, atomic.LoadInt32(&calls), "superseded request resolves before the handler runs")
	case <-time.After(time.Second):
		t.Fatal("first request was not resolved")
	}

	select {
	case err := <-secondDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second request did not complete")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, first.Content())
	assert.Equal(t, "results for matrix", second.Content())
}

func TestDebounce_HandlerError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	preview := Debounce(time.Millisecond, func(context.Context, Args, Display, Bin) error {
		return boom
	})

	err := preview(context.Background(), Args{}, &Buffer{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestDebounce_HandlerPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	preview := Debounce(time.Millisecond, func(context.Context, Args, Display, Bin) error {
		panic("bad preview")
	})

	err := preview(context.Background(), Args{}, &Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad preview")
}

func TestDebounce_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls int32
	preview := Debounce(time.Hour, func(context.Context, Args, Display, Bin) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := preview(ctx, Args{}, &Buffer{}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestDebounce_SequentialRequestsBothRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls int32
	preview := Debounce(5*time.Millisecond, func(context.Context, Args, Display, Bin) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, preview(context.Background(), Args{}, &Buffer{}, nil))
	require.NoError(t, preview(context.Background(), Args{}, &Buffer{}, nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
