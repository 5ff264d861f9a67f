// Package combobox implements a headless search-as-you-type single select.
//
// A Combobox merges static local options with results of an optional remote
// Fetcher. Remote lookups are debounced, and every lookup runs under its own
// context; issuing a new lookup cancels the previous one, and a result is
// applied only while its lookup is still the current one.
package combobox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/and161185/movie-admin/internal/debounce"
)

// Defaults applied by New when the Config leaves them zero.
const (
	DefaultMinChars = 2
	DefaultDebounce = 300 * time.Millisecond
)

// Option is a selectable candidate. Options are unique by Value within a set.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Fetcher loads remote candidates for query. It must abort when ctx is cancelled.
type Fetcher func(ctx context.Context, query string) ([]Option, error)

// Key is a navigation key understood by the combobox.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Config is the combobox contract: value sync goes through SetValue, selection
// changes come back through OnChange.
type Config struct {
	Label       string
	Placeholder string
	Options     []Option
	Fetcher     Fetcher
	MinChars    int
	Debounce    time.Duration
	Disabled    bool

	// OnChange receives the new selection, or nil after Clear.
	OnChange func(*Option)
	// OnUpdate is called after any state change, including async fetch results.
	// It must not call Close.
	OnUpdate func()

	Logger *zap.Logger
}

// State is a render snapshot.
type State struct {
	Label       string
	Placeholder string
	Query       string
	Open        bool
	Highlight   int
	Options     []Option // visible candidates; empty while loading or on error
	Loading     bool
	Error       string
	Selected    *Option
	NoResults   bool
	Editable    bool
	Disabled    bool
}

// Combobox is safe for concurrent use. Callbacks run without internal locks held.
type Combobox struct {
	cfg  Config
	log  *zap.Logger
	ctx  context.Context
	stop context.CancelFunc
	deb  *debounce.Debouncer[string]

	mu        sync.Mutex
	query     string
	settled   string
	open      bool
	highlight int
	remote    []Option
	loading   bool
	errMsg    string
	selected  *Option
	gen       uint64
	cancel    context.CancelFunc
	closed    bool
	closeOnce sync.Once
}

// New builds a combobox whose lookups derive from ctx. Close must be called when done.
func New(ctx context.Context, cfg Config) *Combobox {
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &Combobox{cfg: cfg, log: cfg.Logger}
	c.ctx, c.stop = context.WithCancel(ctx)
	c.deb = debounce.New(cfg.Debounce, c.onSettled)
	return c
}

// Focus opens the dropdown, as focusing the input would.
func (c *Combobox) Focus() {
	c.mu.Lock()
	if c.closed || c.cfg.Disabled || c.selected != nil || c.open {
		c.mu.Unlock()
		return
	}
	c.open = true
	c.highlight = 0
	c.mu.Unlock()

	// A query still waiting out the debounce is looked up right away.
	if !c.deb.Flush() {
		c.mu.Lock()
		if !c.closed && c.open {
			c.startFetchLocked()
		}
		c.mu.Unlock()
	}
	c.notify()
}

// Type replaces the query text and opens the dropdown.
// It is ignored while a value is selected: Clear is the only way back to search.
func (c *Combobox) Type(text string) {
	c.mu.Lock()
	if c.closed || c.cfg.Disabled || c.selected != nil {
		c.mu.Unlock()
		return
	}
	c.query = text
	c.open = true
	c.highlight = 0
	c.mu.Unlock()

	c.deb.Set(text)
	c.notify()
}

// Key handles keyboard navigation. Keys are ignored while closed.
func (c *Combobox) Key(k Key) {
	c.mu.Lock()
	if c.closed || !c.open {
		c.mu.Unlock()
		return
	}
	visible := c.visibleLocked()
	switch k {
	case KeyDown:
		if len(visible) > 0 {
			c.highlight = min(c.highlight+1, len(visible)-1)
		}
	case KeyUp:
		c.highlight = max(c.highlight-1, 0)
	case KeyEnter:
		if c.highlight < len(visible) {
			opt := visible[c.highlight]
			c.mu.Unlock()
			c.Select(opt)
			return
		}
	case KeyEscape:
		c.closeDropdownLocked()
	}
	c.mu.Unlock()
	c.notify()
}

// Hover moves the highlight to the i-th visible option.
func (c *Combobox) Hover(i int) {
	c.mu.Lock()
	if c.closed || !c.open || i < 0 || i >= len(c.visibleLocked()) {
		c.mu.Unlock()
		return
	}
	c.highlight = i
	c.mu.Unlock()
	c.notify()
}

// Press selects the i-th visible option immediately, before any close-on-blur.
func (c *Combobox) Press(i int) {
	c.mu.Lock()
	if c.closed || !c.open {
		c.mu.Unlock()
		return
	}
	visible := c.visibleLocked()
	if i < 0 || i >= len(visible) {
		c.mu.Unlock()
		return
	}
	opt := visible[i]
	c.mu.Unlock()
	c.Select(opt)
}

// Select makes opt the current value, closes the dropdown and shows opt's label.
func (c *Combobox) Select(opt Option) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	sel := opt
	c.selected = &sel
	c.query = sel.Label
	c.closeDropdownLocked()
	c.mu.Unlock()

	c.deb.Set(sel.Label)
	c.changed(&sel)
	c.notify()
}

// Clear drops the selection, empties the query and reopens the dropdown.
func (c *Combobox) Clear() {
	c.mu.Lock()
	if c.closed || c.cfg.Disabled || c.selected == nil {
		c.mu.Unlock()
		return
	}
	c.selected = nil
	c.query = ""
	c.open = true
	c.highlight = 0
	c.mu.Unlock()

	c.deb.Set("")
	c.changed(nil)
	c.notify()
}

// SetValue syncs the selection with an externally held value.
// A value not present among known options leaves the combobox unselected.
func (c *Combobox) SetValue(value *string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.selected = nil
	if value == nil {
		c.query = ""
	} else if opt, ok := c.findLocked(*value); ok {
		c.selected = &opt
		c.query = opt.Label
	}
	query := c.query
	c.mu.Unlock()

	c.deb.Set(query)
	c.notify()
}

// ClickOutside closes the dropdown without touching the selection.
func (c *Combobox) ClickOutside() {
	c.mu.Lock()
	if c.closed || !c.open {
		c.mu.Unlock()
		return
	}
	c.closeDropdownLocked()
	c.mu.Unlock()
	c.notify()
}

// State returns a snapshot for rendering.
func (c *Combobox) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := c.mergedLocked()
	st := State{
		Label:       c.cfg.Label,
		Placeholder: c.cfg.Placeholder,
		Query:       c.query,
		Open:        c.open,
		Highlight:   c.highlight,
		Options:     c.visibleLocked(),
		Loading:     c.loading,
		Error:       c.errMsg,
		Editable:    c.selected == nil && !c.cfg.Disabled,
		Disabled:    c.cfg.Disabled,
	}
	if c.selected != nil {
		sel := *c.selected
		st.Selected = &sel
	}

	threshold := 0
	if c.cfg.Fetcher != nil {
		threshold = c.cfg.MinChars
	}
	st.NoResults = c.open && !c.loading && c.errMsg == "" && len(merged) == 0 &&
		utf8.RuneCountInString(strings.TrimSpace(c.query)) >= threshold &&
		(c.cfg.Fetcher == nil || c.settled == c.query)
	return st
}

// Close cancels the in-flight lookup and the pending debounce. It runs once.
func (c *Combobox) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.cancelLocked()
		c.loading = false
		c.mu.Unlock()

		c.deb.Close()
		c.stop()
	})
}

func (c *Combobox) onSettled(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.settled = q
	c.startFetchLocked()
	c.mu.Unlock()
	c.notify()
}

// startFetchLocked issues a lookup for the settled query, superseding any earlier one.
func (c *Combobox) startFetchLocked() {
	if c.cfg.Fetcher == nil || !c.open {
		return
	}
	c.cancelLocked()

	q := strings.TrimSpace(c.settled)
	if utf8.RuneCountInString(q) < c.cfg.MinChars {
		c.remote = nil
		c.errMsg = ""
		c.loading = false
		c.highlight = 0
		return
	}

	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.loading = true
	c.errMsg = ""

	c.log.Debug("combobox fetch", zap.String("label", c.cfg.Label), zap.Uint64("gen", gen), zap.Int("query_len", len(q)))
	go c.fetch(ctx, gen, q)
}

func (c *Combobox) fetch(ctx context.Context, gen uint64, q string) {
	opts, err := c.cfg.Fetcher(ctx, q)

	c.mu.Lock()
	// The fetcher may ignore cancellation, so staleness is checked here too.
	if c.closed || gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		c.log.Debug("combobox fetch superseded", zap.Uint64("gen", gen))
		return
	}
	c.cancelLocked()
	c.loading = false
	switch {
	case err != nil && errors.Is(err, context.Canceled):
	case err != nil:
		c.errMsg = err.Error()
		c.log.Debug("combobox fetch failed", zap.Uint64("gen", gen), zap.Error(err))
	default:
		c.remote = append([]Option(nil), opts...)
		c.errMsg = ""
		c.highlight = 0
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Combobox) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Combobox) closeDropdownLocked() {
	c.open = false
	c.cancelLocked()
	c.loading = false
}

func (c *Combobox) filteredLocalLocked() []Option {
	q := strings.ToLower(strings.TrimSpace(c.query))
	if q == "" {
		return c.cfg.Options
	}
	out := make([]Option, 0, len(c.cfg.Options))
	for _, o := range c.cfg.Options {
		if strings.Contains(strings.ToLower(o.Label), q) {
			out = append(out, o)
		}
	}
	return out
}

// mergedLocked unions local and remote candidates by Value. A remote option
// replaces a local one in place; new remote options are appended.
func (c *Combobox) mergedLocked() []Option {
	local := c.filteredLocalLocked()
	out := make([]Option, 0, len(local)+len(c.remote))
	pos := make(map[string]int, len(local)+len(c.remote))
	add := func(o Option) {
		if i, ok := pos[o.Value]; ok {
			out[i] = o
			return
		}
		pos[o.Value] = len(out)
		out = append(out, o)
	}
	for _, o := range local {
		add(o)
	}
	for _, o := range c.remote {
		add(o)
	}
	return out
}

func (c *Combobox) visibleLocked() []Option {
	if c.loading || c.errMsg != "" {
		return nil
	}
	return c.mergedLocked()
}

func (c *Combobox) findLocked(value string) (Option, bool) {
	for _, o := range c.remote {
		if o.Value == value {
			return o, true
		}
	}
	for _, o := range c.cfg.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

func (c *Combobox) changed(opt *Option) {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(opt)
	}
}

func (c *Combobox) notify() {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate()
	}
}
