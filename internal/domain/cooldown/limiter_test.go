package cooldown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestLimiter_Reserve(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(10*time.Second, clock)

	if ok, _ := l.Reserve("123"); !ok {
		t.Fatal("first Reserve() refused")
	}

	clock.Advance(3 * time.Second)
	ok, remaining := l.Reserve("123")
	if ok {
		t.Fatal("Reserve() during cooldown succeeded")
	}
	if remaining != 7*time.Second {
		t.Errorf("remaining = %v, want 7s", remaining)
	}
	if got := l.Remaining("123"); got != 7*time.Second {
		t.Errorf("Remaining() = %v, want 7s", got)
	}

	// Independent keys never contend.
	if ok, _ := l.Reserve("456"); !ok {
		t.Error("Reserve() for another user refused")
	}

	clock.Advance(7 * time.Second)
	if ok, _ := l.Reserve("123"); !ok {
		t.Error("Reserve() after the window refused")
	}
}

func TestLimiter_ZeroWindow(t *testing.T) {
	l := NewLimiter(0, clockwork.NewFakeClock())
	for i := 0; i < 3; i++ {
		if ok, _ := l.Reserve("123"); !ok {
			t.Fatal("Reserve() with no window refused")
		}
	}
}

func TestLimiter_ConcurrentReserve(t *testing.T) {
	l := NewLimiter(time.Minute, clockwork.NewFakeClock())

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Reserve("123"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d concurrent reservations won, want 1", wins.Load())
	}
}

func TestLimiter_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(10*time.Second, clock)

	l.Reserve("123")
	clock.Advance(5 * time.Second)
	l.Reserve("456")
	clock.Advance(5 * time.Second)

	if n := l.Sweep(); n != 1 {
		t.Errorf("Sweep() removed %d, want 1", n)
	}
	if l.Size() != 1 {
		t.Errorf("Size() = %d, want 1", l.Size())
	}
	if l.Remaining("456") != 5*time.Second {
		t.Errorf("Remaining(456) = %v", l.Remaining("456"))
	}

	l.Release("456")
	if l.Remaining("456") != 0 {
		t.Error("Release() kept the cooldown")
	}
}
