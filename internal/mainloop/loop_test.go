package mainloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := New()
	var got []int

	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(l.Stop)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopAcceptsPostsFromOtherGoroutines(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	count := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { count++ })
		}()
	}
	go func() {
		wg.Wait()
		l.Post(l.Stop)
	}()

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 50, count)
}

func TestLoopSurvivesPanic(t *testing.T) {
	l := New()
	ran := false

	l.Post(func() { panic("boom") })
	l.Post(func() { ran = true })
	l.Post(l.Stop)

	require.NoError(t, l.Run(context.Background()))
	assert.True(t, ran)
}

func TestLoopStopsOnContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostAfterStopIsDiscarded(t *testing.T) {
	l := New()
	l.Stop()
	l.Post(func() {})
	assert.Zero(t, l.Pending())
}
