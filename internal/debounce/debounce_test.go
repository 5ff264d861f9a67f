package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) add(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func TestDebouncer_CoalescesRapidChanges(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := New(40*time.Millisecond, rec.add)
	defer d.Close()

	for _, v := range []string{"a", "ab", "abc", "abcd"} {
		d.Set(v)
	}

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"abcd"}, rec.values())
	assert.False(t, d.Flush(), "nothing left to settle")
}

func TestDebouncer_EachSettledValueDelivered(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := New(5*time.Millisecond, rec.add)
	defer d.Close()

	d.Set("x")
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, time.Millisecond)
	d.Set("y")
	require.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"x", "y"}, rec.values())
}

func TestDebouncer_CloseCancelsPending(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.add)

	d.Set("late")
	d.Close()
	d.Close()
	d.Set("after-close")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.values())
	assert.False(t, d.Flush())
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	d := New(time.Hour, rec.add)
	defer d.Close()

	assert.False(t, d.Flush(), "nothing pending")
	assert.Empty(t, rec.values())

	d.Set("now")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"now"}, rec.values())
	assert.False(t, d.Flush(), "value already settled")
}

func TestDebouncer_NoDeliveryAfterCloseReturns(t *testing.T) {
	t.Parallel()
	for i := 0; i < 2000; i++ {
		var (
			closed atomic.Bool
			late   atomic.Int32
		)
		d := New(time.Microsecond, func(string) {
			time.Sleep(time.Microsecond)
			if closed.Load() {
				late.Add(1)
			}
		})
		d.Set("x")
		d.Close()
		closed.Store(true)
		time.Sleep(5 * time.Microsecond)
		if n := late.Load(); n != 0 {
			t.Fatalf("round %d: %d deliveries after Close returned", i, n)
		}
	}
}

func TestDebouncer_CloseWaitsForRunningDelivery(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	d := New(time.Millisecond, func(string) {
		close(started)
		<-release
		finished.Store(true)
	})
	d.Set("slow")
	<-started

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatalf("Close returned while fn was running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-closed
	assert.True(t, finished.Load())
}

func TestDebouncer_NilFn(t *testing.T) {
	t.Parallel()
	d := New[int](time.Millisecond, nil)
	defer d.Close()
	d.Set(7)
	require.Eventually(t, func() bool { return !d.Flush() }, time.Second, time.Millisecond)
}
