package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/ani/internal/host/hosttest"
	"github.com/tormodhaugland/ani/internal/logging"
)

func newTracker(h *hosttest.Fake) *Tracker {
	return &Tracker{
		Host:     h,
		Interval: 2 * time.Millisecond,
		Hold:     time.Millisecond,
		Log:      logging.Discard(),
	}
}

func assertNonDecreasing(t *testing.T, percents []int) {
	t.Helper()
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("percent decreased at %d: %v", i, percents)
		}
	}
	for _, p := range percents {
		if p < 0 || p > 100 {
			t.Fatalf("percent out of range: %v", percents)
		}
	}
}

func TestTracker_CapsAtNinetyUntilEnd(t *testing.T) {
	h := &hosttest.Fake{}
	tr := newTracker(h)

	require.NoError(t, tr.Start(context.Background(), "Generating"))
	assert.Equal(t, Running, tr.State())

	require.Eventually(t, func() bool { return tr.Percent() == Cap }, time.Second, time.Millisecond)

	// Give the ticker a few more rounds; it must stay at the cap.
	time.Sleep(10 * time.Millisecond)
	ind := h.Indicators()[0]
	assert.Equal(t, "Generating", ind.Title)
	assert.NotContains(t, ind.Percents(), 100)
	assert.Equal(t, Cap, tr.Percent())

	tr.End()
	tr.Wait()

	percents := ind.Percents()
	assertNonDecreasing(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	assert.True(t, ind.Closed())
	assert.Equal(t, Idle, tr.State())
}

func TestTracker_StepsOfTen(t *testing.T) {
	h := &hosttest.Fake{}
	tr := newTracker(h)

	require.NoError(t, tr.Start(context.Background(), ""))
	require.Eventually(t, func() bool { return tr.Percent() >= 30 }, time.Second, time.Millisecond)
	tr.End()
	tr.Wait()

	ind := h.Indicators()[0]
	assert.Equal(t, DefaultTitle, ind.Title)
	percents := ind.Percents()
	for i, p := range percents[:len(percents)-1] {
		assert.Equal(t, (i+1)*Step, p)
	}
}

func TestTracker_EndWithoutSessionIsNoop(t *testing.T) {
	tr := newTracker(&hosttest.Fake{})

	tr.End()
	tr.Wait()
	assert.Equal(t, Idle, tr.State())
}

func TestTracker_EndTwice(t *testing.T) {
	h := &hosttest.Fake{}
	tr := newTracker(h)
	tr.Hold = 20 * time.Millisecond

	require.NoError(t, tr.Start(context.Background(), "x"))
	tr.End()
	tr.End()
	tr.Wait()

	percents := h.Indicators()[0].Percents()
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestTracker_SecondStartResets(t *testing.T) {
	h := &hosttest.Fake{}
	tr := newTracker(h)
	tr.Interval = time.Hour

	require.NoError(t, tr.Start(context.Background(), "first"))
	require.NoError(t, tr.Start(context.Background(), "second"))

	inds := h.Indicators()
	require.Len(t, inds, 2)
	require.Eventually(t, inds[0].Closed, time.Second, time.Millisecond)
	assert.NotContains(t, inds[0].Percents(), 100)
	assert.Equal(t, Running, tr.State())

	tr.End()
	tr.Wait()
	assert.Equal(t, []int{100}, inds[1].Percents())
	assert.True(t, inds[1].Closed())
}

func TestTracker_StopCancels(t *testing.T) {
	h := &hosttest.Fake{}
	tr := newTracker(h)
	tr.Interval = time.Hour

	require.NoError(t, tr.Start(context.Background(), "x"))
	tr.Stop()

	ind := h.Indicators()[0]
	assert.True(t, ind.Closed())
	assert.Empty(t, ind.Percents())
	assert.Equal(t, Idle, tr.State())
}

func TestTracker_StopAfterEndReachesHundred(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := &hosttest.Fake{}
		tr := newTracker(h)
		tr.Interval = time.Hour

		require.NoError(t, tr.Start(context.Background(), "x"))
		tr.End()
		tr.Stop()

		ind := h.Indicators()[0]
		require.Equal(t, []int{100}, ind.Percents(), "run %d", i)
		assert.True(t, ind.Closed())
		assert.Equal(t, Idle, tr.State())
	}
}

func TestTracker_EndThenContextCancelReachesHundred(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := &hosttest.Fake{}
		tr := newTracker(h)
		tr.Interval = time.Hour
		ctx, cancel := context.WithCancel(context.Background())

		require.NoError(t, tr.Start(ctx, "x"))
		tr.End()
		cancel()
		tr.Wait()

		require.Equal(t, []int{100}, h.Indicators()[0].Percents(), "run %d", i)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completing", Completing.String())
}
