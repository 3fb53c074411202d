// File: internal/usecase/fanout_test.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"diy-research-agent/internal/domain"
)

func TestFanOutPreservesOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	results, err := FanOut(context.Background(), items, 3, func(_ context.Context, n int) (string, error) {
		// Later items finish first.
		time.Sleep(time.Duration(n) * time.Millisecond)
		return strconv.Itoa(n), nil
	})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("slot %d has index %d", i, r.Index)
		}
		if want := strconv.Itoa(items[i]); r.Value != want {
			t.Errorf("slot %d = %q, want %q", i, r.Value, want)
		}
	}
}

func TestFanOutEnforcesLimit(t *testing.T) {
	const limit = 2
	var inFlight, peak atomic.Int64

	_, err := FanOut(context.Background(), make([]int, 8), limit, func(_ context.Context, _ int) (int, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return 0, nil
	})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if p := peak.Load(); p > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", p, limit)
	}
}

func TestFanOutSlotFreedPerWorker(t *testing.T) {
	// With 3 items and limit 2 the third worker must start before both of
	// the first two have finished, and all three overlap is impossible.
	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = FanOut(context.Background(), []int{0, 1, 2}, 2, func(_ context.Context, n int) (int, error) {
			if n < 2 {
				started.Done()
				<-release
			}
			return n, nil
		})
	}()

	started.Wait()
	select {
	case <-done:
		t.Fatal("fan-out finished while two workers were still blocked")
	case <-time.After(10 * time.Millisecond):
	}
	close(release)
	<-done
}

func TestFanOutEmptyItems(t *testing.T) {
	called := false
	results, err := FanOut(context.Background(), nil, 4, func(_ context.Context, _ int) (int, error) {
		called = true
		return 0, nil
	})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	if called {
		t.Error("worker invoked for empty item slice")
	}
}

func TestFanOutRejectsBadLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := FanOut(context.Background(), []int{1}, limit, func(_ context.Context, n int) (int, error) {
			return n, nil
		})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("limit %d: got %v, want ErrInvalidArgument", limit, err)
		}
	}
}

func TestFanOutIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	results, err := FanOut(context.Background(), []int{0, 1, 2, 3}, 2, func(_ context.Context, n int) (int, error) {
		switch n {
		case 1:
			return 0, boom
		case 2:
			panic("worker exploded")
		}
		return n * 10, nil
	})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if results[0].Err != nil || results[0].Value != 0 {
		t.Errorf("slot 0 = (%v, %v)", results[0].Value, results[0].Err)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("slot 1 err = %v, want boom", results[1].Err)
	}
	if results[2].Err == nil || !strings.Contains(results[2].Err.Error(), "worker panic") {
		t.Errorf("slot 2 err = %v, want captured panic", results[2].Err)
	}
	if results[3].Err != nil || results[3].Value != 30 {
		t.Errorf("slot 3 = (%v, %v)", results[3].Value, results[3].Err)
	}
}

func TestFanOutManyItems(t *testing.T) {
	const n = 100
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	results, err := FanOut(context.Background(), items, 7, func(_ context.Context, v int) (string, error) {
		return fmt.Sprintf("v%d", v), nil
	})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	for i, r := range results {
		if want := fmt.Sprintf("v%d", i); r.Value != want {
			t.Fatalf("slot %d = %q, want %q", i, r.Value, want)
		}
	}
}
