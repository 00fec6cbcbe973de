package repositories

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChangeStream reports one change event per value sent on changes.
type fakeChangeStream struct {
	changes chan struct{}
	err     error
	closed  atomic.Bool
}

func newFakeChangeStream() *fakeChangeStream {
	return &fakeChangeStream{changes: make(chan struct{})}
}

func (s *fakeChangeStream) Next(ctx context.Context) bool {
	select {
	case _, ok := <-s.changes:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (s *fakeChangeStream) Err() error { return s.err }

func (s *fakeChangeStream) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

func newTestSubscription(stream changeStream, fetch func(context.Context) (models.EventsByDate, error)) *EventSubscription {
	ctx, cancel := context.WithCancel(context.Background())
	snapshots := make(chan models.EventsByDate)
	go pumpSnapshots(ctx, stream, "u1", fetch, snapshots)
	return &EventSubscription{Snapshots: snapshots, cancel: cancel}
}

func TestSubscriptionEmitsFullSnapshots(t *testing.T) {
	var fetches atomic.Int64
	fetch := func(ctx context.Context) (models.EventsByDate, error) {
		n := fetches.Add(1)
		if n == 1 {
			return models.EventsByDate{"2025-06-01": {{Name: "a", Date: "2025-06-01"}}}, nil
		}
		return models.EventsByDate{
			"2025-06-01": {{Name: "a", Date: "2025-06-01"}},
			"2025-06-02": {{Name: "b", Date: "2025-06-02"}},
		}, nil
	}

	stream := newFakeChangeStream()
	sub := newTestSubscription(stream, fetch)
	defer sub.Close()

	// The initial snapshot arrives without any change event.
	first := <-sub.Snapshots
	require.Len(t, first, 1)

	// Each change event triggers a fresh full-replacement snapshot.
	stream.changes <- struct{}{}
	second := <-sub.Snapshots
	require.Len(t, second, 2)
	assert.Equal(t, int64(2), fetches.Load())
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	fetch := func(ctx context.Context) (models.EventsByDate, error) {
		return models.EventsByDate{"2025-06-01": {{Name: "a", Date: "2025-06-01"}}}, nil
	}

	stream := newFakeChangeStream()
	sub := newTestSubscription(stream, fetch)

	<-sub.Snapshots

	// A change lands and its snapshot is computed, but no consumer is
	// receiving when the subscription is torn down.
	stream.changes <- struct{}{}
	sub.Close()

	// The pump shuts down (the stream is closed) before anything else can
	// be received from the channel.
	require.Eventually(t, func() bool { return stream.closed.Load() }, time.Second, time.Millisecond)

	_, open := <-sub.Snapshots
	assert.False(t, open, "no snapshot may be delivered after Close")
}

func TestSubscriptionFetchFailureKeepsPumping(t *testing.T) {
	var fetches atomic.Int64
	fetch := func(ctx context.Context) (models.EventsByDate, error) {
		if fetches.Add(1) == 1 {
			return nil, assert.AnError
		}
		return models.EventsByDate{"2025-06-01": {{Name: "a", Date: "2025-06-01"}}}, nil
	}

	stream := newFakeChangeStream()
	sub := newTestSubscription(stream, fetch)
	defer sub.Close()

	// The initial fetch fails and is skipped; the next change still emits.
	stream.changes <- struct{}{}
	snapshot := <-sub.Snapshots
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(2), fetches.Load())
}
