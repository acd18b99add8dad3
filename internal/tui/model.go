// Package tui renders the interactive categorization session with
// bubbletea. All state transitions live in the session package; this
// package only translates key events and draws.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/siftcat/sift/internal/session"
)

const (
	minWidth  = 64
	minHeight = 14
)

// digitTickMsg fires after the selector-buffer idle timeout so an expired
// buffer disappears from the screen without another keypress.
type digitTickMsg struct{}

// Config holds everything the TUI needs to run.
type Config struct {
	Session *session.Session
	Theme   Theme
}

// Model is the bubbletea model wrapping a session.
type Model struct {
	session  *session.Session
	keymap   KeyMap
	theme    Theme
	help     help.Model
	flash    string
	width    int
	height   int
	quitting bool
}

func newModel(cfg Config) Model {
	return Model{
		session: cfg.Session,
		keymap:  DefaultKeyMap(),
		theme:   cfg.Theme,
		help:    help.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m Model) digitTick() tea.Cmd {
	return tea.Tick(m.session.DigitTimeout()+50*time.Millisecond, func(time.Time) tea.Msg {
		return digitTickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case digitTickMsg:
		if m.session.Digits() != "" {
			return m, m.digitTick()
		}
		m.session.ExpireDigits()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.session.QuitPrompt() {
		return m.handleQuitPromptKey(msg)
	}

	m.flash = ""

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.session.MoveRow(-1)
	case key.Matches(msg, m.keymap.Down):
		m.session.MoveRow(1)
	case key.Matches(msg, m.keymap.Left):
		if m.session.Editing() {
			m.session.CaretLeft()
		} else {
			m.session.MoveField(-1)
		}
	case key.Matches(msg, m.keymap.Right):
		if m.session.Editing() {
			m.session.CaretRight()
		} else {
			m.session.MoveField(1)
		}
	case key.Matches(msg, m.keymap.Commit):
		m.session.Commit()
	case key.Matches(msg, m.keymap.Backspace):
		m.session.Backspace()
	case key.Matches(msg, m.keymap.Clear):
		m.session.Clear()
	case key.Matches(msg, m.keymap.Save):
		if err := m.session.Save(); err != nil {
			m.flash = err.Error()
		} else {
			m.flash = "saved"
		}
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keymap.Cancel):
		if !m.session.CancelEdit() {
			if m.session.RequestQuit() {
				m.quitting = true
				return m, tea.Quit
			}
		}
	default:
		return m.handleTextKey(msg)
	}

	if f := m.session.TakeFlash(); f != "" {
		m.flash = f
	}
	return m, nil
}

// handleTextKey feeds printable input into the session's buffers.
func (m Model) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeySpace:
		m.session.TypeRune(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.session.TypeRune(r)
		}
		if m.session.Digits() != "" {
			cmd = m.digitTick()
		}
	default:
	}
	if f := m.session.TakeFlash(); f != "" {
		m.flash = f
	}
	return m, cmd
}

func (m Model) handleQuitPromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		if err := m.session.Save(); err != nil {
			m.session.DismissQuit()
			m.flash = err.Error()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case "q", "y":
		m.quitting = true
		return m, tea.Quit
	case "esc", "n":
		m.session.DismissQuit()
	}
	return m, nil
}
