// Package tui renders the search combobox and the interactive prompts of the CLI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/and161185/movie-admin/internal/combobox"
)

// ErrAborted is returned when the user leaves the picker with ctrl+c.
var ErrAborted = errors.New("selection aborted")

// listTop is the screen row of the first option: label, then input.
const listTop = 2

// updateMsg tells the program the combobox changed state.
type updateMsg struct{}

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Esc       key.Binding
	Clear     key.Binding
	Backspace key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/confirm")),
		Esc:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear")),
		Backspace: key.NewBinding(key.WithKeys("backspace")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Esc, k.Clear, k.Quit}
}

// Styles holds the picker's lipgloss styles.
type Styles struct {
	Label       lipgloss.Style
	Input       lipgloss.Style
	Placeholder lipgloss.Style
	Option      lipgloss.Style
	Highlighted lipgloss.Style
	Selected    lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	Key         lipgloss.Style
}

// DefaultStyles returns the default picker styles.
func DefaultStyles() Styles {
	return Styles{
		Label:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Input:       lipgloss.NewStyle().Foreground(lipgloss.Color("230")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Option:      lipgloss.NewStyle().PaddingLeft(2),
		Highlighted: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Key:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
	}
}

// PickerModel is the Bubble Tea model around a combobox.
type PickerModel struct {
	cb      *combobox.Combobox
	updates chan struct{}
	done    chan struct{}
	once    *sync.Once
	keys    keyMap
	spin    spinner.Model
	styles  Styles

	chosen  *combobox.Option
	aborted bool
}

// NewPicker builds a focused picker. Close must be called when done.
func NewPicker(ctx context.Context, cfg combobox.Config) PickerModel {
	updates := make(chan struct{}, 1)
	next := cfg.OnUpdate
	cfg.OnUpdate = func() {
		if next != nil {
			next()
		}
		select {
		case updates <- struct{}{}:
		default:
		}
	}
	m := PickerModel{
		cb:      combobox.New(ctx, cfg),
		updates: updates,
		done:    make(chan struct{}),
		once:    &sync.Once{},
		keys:    defaultKeys(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:  DefaultStyles(),
	}
	m.cb.Focus()
	return m
}

// Combobox exposes the underlying state machine.
func (m PickerModel) Combobox() *combobox.Combobox { return m.cb }

// Chosen returns the confirmed option, if any.
func (m PickerModel) Chosen() *combobox.Option { return m.chosen }

// Aborted reports whether the user quit without confirming.
func (m PickerModel) Aborted() bool { return m.aborted }

// Close stops the combobox's pending work and releases a waiting update listener.
func (m PickerModel) Close() {
	m.once.Do(func() { close(m.done) })
	m.cb.Close()
}

// waitForUpdate blocks until the combobox reports a change or the picker is closed.
func (m PickerModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.updates:
			return updateMsg{}
		case <-m.done:
			return nil
		}
	}
}

func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForUpdate())
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.cb.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Enter):
		if st.Selected != nil && !st.Open {
			sel := *st.Selected
			m.chosen = &sel
			return m, tea.Quit
		}
		m.cb.Key(combobox.KeyEnter)
	case key.Matches(msg, m.keys.Up):
		m.cb.Key(combobox.KeyUp)
	case key.Matches(msg, m.keys.Down):
		if !st.Open {
			m.cb.Focus()
		}
		m.cb.Key(combobox.KeyDown)
	case key.Matches(msg, m.keys.Esc):
		m.cb.Key(combobox.KeyEscape)
	case key.Matches(msg, m.keys.Clear):
		m.cb.Clear()
	case key.Matches(msg, m.keys.Backspace):
		if st.Editable && st.Query != "" {
			_, size := utf8.DecodeLastRuneInString(st.Query)
			m.cb.Type(st.Query[:len(st.Query)-size])
		}
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		if st.Editable {
			m.cb.Type(st.Query + string(msg.Runes))
		}
	}
	return m, nil
}

func (m PickerModel) handleMouse(msg tea.MouseMsg) {
	row := msg.Y - listTop
	n := len(m.cb.State().Options)
	switch msg.Action {
	case tea.MouseActionMotion:
		if row >= 0 && row < n {
			m.cb.Hover(row)
		}
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		switch {
		case msg.Y == listTop-1:
			m.cb.Focus()
		case row >= 0 && row < n && m.cb.State().Open:
			m.cb.Press(row)
		default:
			m.cb.ClickOutside()
		}
	}
}

func (m PickerModel) View() string {
	st := m.cb.State()
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Label.Render(st.Label))
	b.WriteByte('\n')

	input := s.Input.Render(st.Query)
	if st.Query == "" {
		input = s.Placeholder.Render(st.Placeholder)
	}
	b.WriteString("> " + input)
	switch {
	case st.Selected != nil:
		b.WriteString(" " + s.Selected.Render("✓"))
	case st.Loading:
		b.WriteString(" " + m.spin.View())
	}
	b.WriteByte('\n')

	if st.Open {
		for i, o := range st.Options {
			if i == st.Highlight {
				b.WriteString(s.Highlighted.Render("›" + o.Label))
			} else {
				b.WriteString(s.Option.Render(o.Label))
			}
			b.WriteByte('\n')
		}
		switch {
		case st.Error != "":
			b.WriteString(s.Error.Render("  " + st.Error))
			b.WriteByte('\n')
		case st.NoResults:
			b.WriteString(s.Muted.Render("  no results"))
			b.WriteByte('\n')
		}
	}

	help := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, s.Key.Render(h.Key)+" "+s.Muted.Render(h.Desc))
	}
	b.WriteString("\n" + strings.Join(help, "  "))
	return b.String()
}

// Run shows a picker until the user confirms a value or quits.
func Run(ctx context.Context, cfg combobox.Config, opts ...tea.ProgramOption) (*combobox.Option, error) {
	m := NewPicker(ctx, cfg)
	defer m.Close()

	popts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithMouseCellMotion(),
		tea.WithOutput(os.Stderr),
	}, opts...)
	final, err := tea.NewProgram(m, popts...).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	pm, ok := final.(PickerModel)
	if !ok || pm.Aborted() || pm.Chosen() == nil {
		return nil, ErrAborted
	}
	return pm.Chosen(), nil
}
