package combobox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var numbers = []Option{{Value: "1", Label: "Uno"}, {Value: "2", Label: "Dos"}, {Value: "3", Label: "Tres"}}

type changes struct {
	mu  sync.Mutex
	got []*Option
}

func (c *changes) record(o *Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, o)
}

func (c *changes) all() []*Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Option(nil), c.got...)
}

func newLocal(t *testing.T, opts []Option, ch *changes) *Combobox {
	t.Helper()
	cfg := Config{Label: "Numbers", Options: opts, Debounce: time.Millisecond}
	if ch != nil {
		cfg.OnChange = ch.record
	}
	c := New(context.Background(), cfg)
	t.Cleanup(c.Close)
	return c
}

// gatedFetcher blocks every lookup until the test releases it, ignoring ctx.
type gatedFetcher struct {
	mu    sync.Mutex
	calls map[string]*gatedCall
}

type gatedCall struct {
	ctx     context.Context
	release chan []Option
}

func newGated() *gatedFetcher { return &gatedFetcher{calls: map[string]*gatedCall{}} }

func (f *gatedFetcher) fetch(ctx context.Context, q string) ([]Option, error) {
	call := &gatedCall{ctx: ctx, release: make(chan []Option, 1)}
	f.mu.Lock()
	f.calls[q] = call
	f.mu.Unlock()
	return <-call.release, nil
}

func (f *gatedFetcher) call(q string) *gatedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[q]
}

func TestCombobox_LocalFilterCaseInsensitive(t *testing.T) {
	t.Parallel()
	c := newLocal(t, numbers, nil)

	c.Type("  TR ")
	st := c.State()
	require.True(t, st.Open)
	assert.Equal(t, []Option{{Value: "3", Label: "Tres"}}, st.Options)

	c.Type("")
	assert.Equal(t, numbers, c.State().Options)
}

func TestCombobox_KeyboardSelection(t *testing.T) {
	t.Parallel()
	ch := &changes{}
	c := newLocal(t, []Option{{Value: "1", Label: "Uno"}, {Value: "2", Label: "Dos"}}, ch)

	c.Focus()
	require.Equal(t, 0, c.State().Highlight)
	c.Key(KeyDown)
	c.Key(KeyEnter)

	st := c.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, Option{Value: "2", Label: "Dos"}, *st.Selected)
	assert.Equal(t, "Dos", st.Query)
	assert.False(t, st.Open)
	assert.False(t, st.Editable)
	got := ch.all()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Value)
}

func TestCombobox_KeysClampAndIgnoredWhenClosed(t *testing.T) {
	t.Parallel()
	c := newLocal(t, numbers, nil)

	c.Key(KeyDown)
	assert.Equal(t, 0, c.State().Highlight, "closed dropdown ignores keys")

	c.Focus()
	c.Key(KeyUp)
	assert.Equal(t, 0, c.State().Highlight)
	for i := 0; i < 10; i++ {
		c.Key(KeyDown)
	}
	assert.Equal(t, 2, c.State().Highlight)
	c.Key(KeyUp)
	assert.Equal(t, 1, c.State().Highlight)
}

func TestCombobox_EnterOnEmptyListIsNoop(t *testing.T) {
	t.Parallel()
	ch := &changes{}
	c := newLocal(t, numbers, ch)

	c.Type("zzz")
	c.Key(KeyDown)
	c.Key(KeyEnter)

	st := c.State()
	assert.Nil(t, st.Selected)
	assert.True(t, st.Open)
	assert.True(t, st.NoResults)
	assert.Empty(t, ch.all())
}

func TestCombobox_EscapeClosesWithoutChangingSelection(t *testing.T) {
	t.Parallel()
	ch := &changes{}
	c := newLocal(t, numbers, ch)

	c.Type("u")
	c.Key(KeyEscape)

	st := c.State()
	assert.False(t, st.Open)
	assert.Nil(t, st.Selected)
	assert.Equal(t, "u", st.Query)
	assert.Empty(t, ch.all())
}

func TestCombobox_SelectedIsReadOnlyAndClearResets(t *testing.T) {
	t.Parallel()
	ch := &changes{}
	c := newLocal(t, numbers, ch)

	c.Focus()
	c.Select(numbers[0])
	c.Type("something else")
	assert.Equal(t, "Uno", c.State().Query, "typing is ignored while selected")

	c.Clear()
	st := c.State()
	assert.Equal(t, "", st.Query)
	assert.True(t, st.Editable)
	assert.True(t, st.Open)
	assert.Nil(t, st.Selected)

	got := ch.all()
	require.Len(t, got, 2)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])

	c.Clear()
	assert.Len(t, ch.all(), 2, "clear without selection does not fire onChange")
}

func TestCombobox_HoverAndPress(t *testing.T) {
	t.Parallel()
	ch := &changes{}
	c := newLocal(t, numbers, ch)

	c.Focus()
	c.Hover(2)
	assert.Equal(t, 2, c.State().Highlight)
	c.Hover(7)
	assert.Equal(t, 2, c.State().Highlight, "out of range hover ignored")

	c.Press(1)
	st := c.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "Dos", st.Selected.Label)
	assert.False(t, st.Open)
}

func TestCombobox_ClickOutsideKeepsSelection(t *testing.T) {
	t.Parallel()
	c := newLocal(t, numbers, nil)

	c.Focus()
	c.Select(numbers[2])
	c.ClickOutside()
	st := c.State()
	assert.False(t, st.Open)
	require.NotNil(t, st.Selected)
	assert.Equal(t, "3", st.Selected.Value)
}

func TestCombobox_DisabledIgnoresInput(t *testing.T) {
	t.Parallel()
	c := New(context.Background(), Config{Options: numbers, Disabled: true})
	defer c.Close()

	c.Focus()
	c.Type("u")
	st := c.State()
	assert.False(t, st.Open)
	assert.Equal(t, "", st.Query)
	assert.False(t, st.Editable)
}

func TestCombobox_SetValue(t *testing.T) {
	t.Parallel()
	c := newLocal(t, numbers, nil)

	v := "3"
	c.SetValue(&v)
	st := c.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "Tres", st.Query)

	unknown := "99"
	c.SetValue(&unknown)
	assert.Nil(t, c.State().Selected)

	c.SetValue(nil)
	st = c.State()
	assert.Nil(t, st.Selected)
	assert.Equal(t, "", st.Query)
}

func TestCombobox_StaleFetchNeverOverwritesFresher(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	f := newGated()
	c := New(context.Background(), Config{
		Fetcher:  f.fetch,
		MinChars: 1,
		Debounce: time.Millisecond,
		Logger:   zap.New(core),
	})
	defer c.Close()

	c.Type("a")
	require.Eventually(t, func() bool { return f.call("a") != nil }, time.Second, time.Millisecond)
	c.Type("ab")
	require.Eventually(t, func() bool { return f.call("ab") != nil }, time.Second, time.Millisecond)

	first := f.call("a")
	assert.ErrorIs(t, first.ctx.Err(), context.Canceled, "superseded lookup is cancelled")

	fresh := []Option{{Value: "2", Label: "ab result"}}
	f.call("ab").release <- fresh
	require.Eventually(t, func() bool {
		st := c.State()
		return !st.Loading && len(st.Options) == 1
	}, time.Second, time.Millisecond)

	first.release <- []Option{{Value: "1", Label: "stale a result"}}
	require.Eventually(t, func() bool {
		return logs.FilterMessage("combobox fetch superseded").Len() == 1
	}, time.Second, time.Millisecond)

	st := c.State()
	assert.Equal(t, fresh, st.Options)
	assert.Empty(t, st.Error)
}

func TestCombobox_RemoteMergeRemoteWins(t *testing.T) {
	t.Parallel()
	fetcher := func(ctx context.Context, q string) ([]Option, error) {
		return []Option{{Value: "2", Label: "Dos (remote)"}, {Value: "4", Label: "Dosmil"}}, nil
	}
	c := New(context.Background(), Config{
		Options:  []Option{{Value: "1", Label: "Uno dos"}, {Value: "2", Label: "Dos"}},
		Fetcher:  fetcher,
		Debounce: time.Millisecond,
	})
	defer c.Close()

	c.Type("dos")
	require.Eventually(t, func() bool { return len(c.State().Options) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []Option{
		{Value: "1", Label: "Uno dos"},
		{Value: "2", Label: "Dos (remote)"},
		{Value: "4", Label: "Dosmil"},
	}, c.State().Options)
}

func TestCombobox_FetchErrorSuppressesList(t *testing.T) {
	t.Parallel()
	fetcher := func(ctx context.Context, q string) ([]Option, error) {
		return nil, errors.New("boom")
	}
	c := New(context.Background(), Config{Options: numbers, Fetcher: fetcher, Debounce: time.Millisecond})
	defer c.Close()

	c.Type("uno")
	require.Eventually(t, func() bool { return c.State().Error == "boom" }, time.Second, time.Millisecond)
	st := c.State()
	assert.Empty(t, st.Options)
	assert.False(t, st.Loading)
	assert.False(t, st.NoResults)
}

func TestCombobox_CancellationIsNotAnError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	fetcher := func(ctx context.Context, q string) ([]Option, error) {
		calls.Add(1)
		return nil, fmt.Errorf("transport: %w", context.Canceled)
	}
	c := New(context.Background(), Config{Fetcher: fetcher, Debounce: time.Millisecond})
	defer c.Close()

	c.Type("abc")
	require.Eventually(t, func() bool { return calls.Load() == 1 && !c.State().Loading }, time.Second, time.Millisecond)
	assert.Empty(t, c.State().Error)
}

func TestCombobox_BelowMinCharsSkipsFetch(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	fetcher := func(ctx context.Context, q string) ([]Option, error) {
		calls.Add(1)
		return nil, nil
	}
	c := New(context.Background(), Config{Fetcher: fetcher, MinChars: 3, Debounce: time.Millisecond})
	defer c.Close()

	c.Type("ab ")
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
	st := c.State()
	assert.False(t, st.Loading)
	assert.False(t, st.NoResults, "query shorter than MinChars")

	c.Type("abc")
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return c.State().NoResults }, time.Second, time.Millisecond)
}

func TestCombobox_CloseCancelsInFlight(t *testing.T) {
	t.Parallel()
	f := newGated()
	var updates atomic.Int32
	c := New(context.Background(), Config{
		Fetcher:  f.fetch,
		Debounce: time.Millisecond,
		OnUpdate: func() { updates.Add(1) },
	})

	c.Type("star")
	require.Eventually(t, func() bool { return f.call("star") != nil }, time.Second, time.Millisecond)
	c.Close()
	c.Close()

	call := f.call("star")
	assert.ErrorIs(t, call.ctx.Err(), context.Canceled)
	before := updates.Load()
	call.release <- []Option{{Value: "1", Label: "Star Wars"}}
	c.Type("more")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, before, updates.Load(), "no updates after Close")
	assert.Empty(t, c.State().Options)
}

func TestCombobox_HighlightResetsWhenQueryChanges(t *testing.T) {
	t.Parallel()
	c := newLocal(t, numbers, nil)

	c.Focus()
	c.Key(KeyDown)
	c.Key(KeyDown)
	require.Equal(t, 2, c.State().Highlight)

	c.Type("d")
	st := c.State()
	assert.Equal(t, 0, st.Highlight)
	assert.Equal(t, []Option{{Value: "2", Label: "Dos"}}, st.Options)
}

func TestCombobox_HighlightResetsWhenResultsArrive(t *testing.T) {
	t.Parallel()
	f := newGated()
	c := New(context.Background(), Config{Fetcher: f.fetch, MinChars: 1, Debounce: time.Millisecond})
	defer c.Close()

	c.Type("u")
	require.Eventually(t, func() bool { return f.call("u") != nil }, time.Second, time.Millisecond)
	first := f.call("u")
	first.release <- []Option{{Value: "1", Label: "u1"}, {Value: "2", Label: "u2"}, {Value: "3", Label: "u3"}}
	require.Eventually(t, func() bool { return len(c.State().Options) == 3 }, time.Second, time.Millisecond)

	c.Key(KeyDown)
	c.Key(KeyDown)
	require.Equal(t, 2, c.State().Highlight)

	// An unknown value keeps the query and re-runs the lookup without touching the highlight.
	missing := "404"
	c.SetValue(&missing)
	require.Eventually(t, func() bool { return f.call("u") != first }, time.Second, time.Millisecond)
	assert.Equal(t, 2, c.State().Highlight)

	f.call("u").release <- []Option{{Value: "4", Label: "u4"}, {Value: "5", Label: "u5"}}
	require.Eventually(t, func() bool { return len(c.State().Options) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, c.State().Highlight)
}

func TestCombobox_FocusLooksUpPendingQueryAtOnce(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		queries []string
	)
	fetcher := func(ctx context.Context, q string) ([]Option, error) {
		mu.Lock()
		defer mu.Unlock()
		queries = append(queries, q)
		return nil, nil
	}
	c := New(context.Background(), Config{Fetcher: fetcher, MinChars: 1, Debounce: time.Hour})
	defer c.Close()

	c.Type("star")
	c.Key(KeyEscape)
	c.Focus()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(queries) == 1
	}, time.Second, time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"star"}, queries)
	mu.Unlock()
}
