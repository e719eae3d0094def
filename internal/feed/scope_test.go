package feed_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/an-gr-hh1/landslide-sync/internal/feed"
)

func TestScope_CloseCancelsAllSubscriptions(t *testing.T) {
	svc := newFakeService()
	f := feed.New(svc, slog.Default())
	scope := feed.NewScope()

	var deliveries int
	for _, path := range []string{"forum", "incidents"} {
		sub, err := f.Subscribe(context.Background(), path, feed.FuncSink{
			Value: func(any) { deliveries++ },
		})
		require.NoError(t, err)
		scope.Add(sub)
	}

	svc.deliver("forum", map[string]any{})
	scope.Close()
	svc.deliver("forum", map[string]any{})
	svc.deliver("incidents", map[string]any{})

	assert.Equal(t, 1, deliveries)
	assert.Equal(t, 2, svc.cancelled)
}

func TestScope_AddAfterCloseCancelsImmediately(t *testing.T) {
	svc := newFakeService()
	f := feed.New(svc, slog.Default())
	scope := feed.NewScope()
	scope.Close()

	sub, err := f.Subscribe(context.Background(), "alerts", feed.FuncSink{})
	require.NoError(t, err)
	scope.Add(sub)

	assert.Equal(t, 1, svc.cancelled)
}

func TestScope_ApplyDiscardsResultsAfterClose(t *testing.T) {
	scope := feed.NewScope()

	applied := false
	require.True(t, scope.Apply(func() { applied = true }))
	assert.True(t, applied)

	scope.Close()

	stale := false
	assert.False(t, scope.Apply(func() { stale = true }))
	assert.False(t, stale, "one-shot result arriving after scope close must be discarded")
}

func TestScope_CloseIsIdempotent(t *testing.T) {
	scope := feed.NewScope()
	scope.Close()
	scope.Close()
}
