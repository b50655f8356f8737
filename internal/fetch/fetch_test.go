package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bookshelf/internal/reactive"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStart_DeliversSuccessWhileLive(t *testing.T) {
	q := reactive.NewQueue()
	var got string

	h := Start(context.Background(), q, func(context.Context) (string, error) {
		return "ok", nil
	}, Callbacks[string]{OnSuccess: func(s string) { got = s }})

	require.NoError(t, q.Wait(waitCtx(t), 1))
	assert.Equal(t, "", got, "nothing is delivered before the dispatcher runs")
	q.Drain()

	assert.Equal(t, "ok", got)
	assert.True(t, h.Live())
	assert.True(t, h.delivered.Load())
	<-h.settled
}

func TestStart_CancelledHandleDropsSuccess(t *testing.T) {
	q := reactive.NewQueue()
	release := make(chan struct{})
	delivered := false
	var dropped *Handle

	h := Start(context.Background(), q, func(context.Context) (int, error) {
		<-release
		return 1, nil
	}, Callbacks[int]{
		OnSuccess: func(int) { delivered = true },
		OnDrop:    func(h *Handle) { dropped = h },
	})

	h.Cancel()
	assert.Equal(t, Cancelled, h.State())
	close(release)

	require.NoError(t, q.Wait(waitCtx(t), 1))
	q.Drain()

	assert.False(t, delivered)
	assert.False(t, h.delivered.Load())
	assert.Same(t, h, dropped)
}

func TestStart_CancelAfterArrivalButBeforeDeliveryDrops(t *testing.T) {
	q := reactive.NewQueue()
	delivered := false

	h := Start(context.Background(), q, func(context.Context) (int, error) {
		return 1, nil
	}, Callbacks[int]{OnSuccess: func(int) { delivered = true }})

	// The response has been posted but the owning goroutine has not run it.
	require.NoError(t, q.Wait(waitCtx(t), 1))
	h.Cancel()
	q.Drain()

	assert.False(t, delivered)
}

func TestStart_ErrorDeliveredOnceWhileLive(t *testing.T) {
	q := reactive.NewQueue()
	boom := errors.New("boom")
	var errs []error

	Start(context.Background(), q, func(context.Context) (int, error) {
		return 0, boom
	}, Callbacks[int]{
		OnSuccess: func(int) { t.Fatal("OnSuccess called on failure") },
		OnError:   func(err error) { errs = append(errs, err) },
	})

	require.NoError(t, q.Wait(waitCtx(t), 1))
	q.Drain()

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestStart_CancelledHandleDropsError(t *testing.T) {
	q := reactive.NewQueue()
	release := make(chan struct{})
	called := false

	h := Start(context.Background(), q, func(context.Context) (int, error) {
		<-release
		return 0, errors.New("late failure")
	}, Callbacks[int]{OnError: func(error) { called = true }})

	h.Cancel()
	close(release)
	require.NoError(t, q.Wait(waitCtx(t), 1))
	q.Drain()

	assert.False(t, called)
}

func TestStart_RequestIDReachesTransport(t *testing.T) {
	q := reactive.NewQueue()
	ids := make(chan string, 1)

	h := Start(context.Background(), q, func(ctx context.Context) (int, error) {
		ids <- RequestID(ctx)
		return 0, nil
	}, Callbacks[int]{})

	select {
	case id := <-ids:
		assert.Equal(t, h.ID(), id)
		assert.NotEmpty(t, id)
	case <-waitCtx(t).Done():
		t.Fatal("request never ran")
	}
}

func TestHandle_CancelIsIdempotent(t *testing.T) {
	h := NewHandle()
	assert.Equal(t, "live", h.State().String())
	h.Cancel()
	h.Cancel()
	assert.Equal(t, "cancelled", h.State().String())
	assert.NotEqual(t, NewHandle().ID(), h.ID())
}

func TestRequestID_Absent(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
