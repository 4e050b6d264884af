package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/shindosokuho/relay/internal/metrics"
)

func TestRegisterFiresOnEachTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock, nil, metrics.NewRegistry(), 4)
	defer s.Stop()

	var count int32
	s.Register(Job{ID: "probe", Interval: time.Second, Fn: func(ctx context.Context) {
		atomic.AddInt32(&count, 1)
	}})

	for i := 0; i < 3; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Second)
	}
	waitForCount(t, &count, 3)
}

func TestRegisterRunsImmediatelyWhenConfigured(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock, nil, metrics.NewRegistry(), 4)
	defer s.Stop()

	var fired int32
	s.Register(Job{ID: "keepalive", Interval: time.Minute, RunImmediately: true, Fn: func(ctx context.Context) {
		atomic.AddInt32(&fired, 1)
	}})

	waitForCount(t, &fired, 1)
}

func TestJobPanicIsRecoveredAndDoesNotStopSchedule(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock, nil, metrics.NewRegistry(), 4)
	defer s.Stop()

	var runs int32
	s.Register(Job{ID: "flaky", Interval: time.Second, Fn: func(ctx context.Context) {
		n := atomic.AddInt32(&runs, 1)
		if n == 1 {
			panic("boom")
		}
	}})

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	waitForCount(t, &runs, 1)
	clock.Advance(time.Second)
	waitForCount(t, &runs, 2)
}

func TestMaxInstancesSkipsOverlappingRuns(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock, nil, metrics.NewRegistry(), 4)
	defer s.Stop()

	var started int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	s.Register(Job{ID: "slow", Interval: time.Second, MaxInstances: 1, Fn: func(ctx context.Context) {
		n := atomic.AddInt32(&started, 1)
		if n == 1 {
			wg.Done()
			<-release
		}
	}})

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	wg.Wait()

	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&started); got != 1 {
		t.Fatalf("expected the overlapping tick to be skipped, started=%d", got)
	}
	close(release)
}

func waitForCount(t *testing.T, counter *int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(counter) >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for count >= %d, got %d", want, atomic.LoadInt32(counter))
}
