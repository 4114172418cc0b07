package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mastercactapus/monitorman/board"
)

var (
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())
	focusedButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("12")).
				Bold(true)
	valueStyle = lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Center).
			Bold(true)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const (
	focusPrev = iota
	focusNext
)

type stateMsg board.State

type stepErrMsg struct{ err error }

type tuiModel struct {
	ctl   stepper
	label string
	focus int
	err   error
}

func newTUIModel(ctl stepper, label string) tuiModel {
	return tuiModel{ctl: ctl, label: label, focus: focusNext}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) step(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return stepErrMsg{err: err}
		}
		return nil
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.label = board.State(msg).String()
	case stepErrMsg:
		m.err = msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "p":
			m.focus = focusPrev
			return m, m.step(m.ctl.Retreat)
		case "right", "l", "n":
			m.focus = focusNext
			return m, m.step(m.ctl.Advance)
		case "tab", "shift+tab":
			m.focus = 1 - m.focus
		case "enter", " ":
			if m.focus == focusPrev {
				return m, m.step(m.ctl.Retreat)
			}
			return m, m.step(m.ctl.Advance)
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	prev, next := buttonStyle, buttonStyle
	if m.focus == focusPrev {
		prev = focusedButtonStyle
	} else {
		next = focusedButtonStyle
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center,
		prev.Render("<<< Previous State"),
		valueStyle.Render(m.label),
		next.Render("Next State >>>"),
	)
	if m.err != nil {
		row = lipgloss.JoinVertical(lipgloss.Left, row, errStyle.Render(m.err.Error()))
	}
	return row + "\n"
}

// attachTUI subscribes to mirror before reading its label, so a state
// shown in between still reaches the model through updates.
func attachTUI(mirror *board.Mirror, ctl stepper) (tuiModel, <-chan board.State, func()) {
	updates, unsubscribe := mirror.Subscribe()
	return newTUIModel(ctl, mirror.Label()), updates, unsubscribe
}

// runTUI runs the terminal display until the user quits or ctx is done.
func runTUI(mirror *board.Mirror, ctl stepper) func(context.Context) error {
	return func(ctx context.Context) error {
		m, updates, unsubscribe := attachTUI(mirror, ctl)
		defer unsubscribe()
		p := tea.NewProgram(m, tea.WithContext(ctx))
		go func() {
			for s := range updates {
				p.Send(stateMsg(s))
			}
		}()

		_, err := p.Run()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
}
