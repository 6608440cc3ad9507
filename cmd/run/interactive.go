package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	stackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type runEvent struct {
	label string
	text  string
	isErr bool
	stack string
}

type runDoneMsg struct {
	code int
	err  error
}

type runEventMsg runEvent

type interactiveModel struct {
	cfg      runtime.Config
	events   []runEvent
	feed     chan tea.Msg
	spin     spinner.Model
	code     int
	err      error
	done     bool
	released bool
}

func newInteractiveModel(cfg runtime.Config) *interactiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return &interactiveModel{
		cfg:  cfg,
		feed: make(chan tea.Msg, 64),
		spin: s,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startRun, m.waitForEvent)
}

// startRun drives the executor on its own goroutine, feeding lifecycle
// events into the model's channel.
func (m *interactiveModel) startRun() tea.Msg {
	cfg := m.cfg
	cfg.Hooks = runtime.Hooks{
		OnRuntimeCreated: func(rt engine.RuntimeHandle) {
			m.feed <- runEventMsg{label: "runtime", text: "engine runtime created"}
		},
		OnContextCreated: func(rt engine.RuntimeHandle, c engine.ContextHandle) {
			m.feed <- runEventMsg{label: "context", text: "context ready, preloads resident"}
		},
		OnExecutionComplete: func() {
			m.feed <- runEventMsg{label: "drain", text: "pending work drained"}
		},
		OnBeforeRelease: func(rt engine.RuntimeHandle, c engine.ContextHandle) {
			m.feed <- runEventMsg{label: "release", text: "releasing handles"}
		},
		OnError: func(message string) {
			m.feed <- runEventMsg{label: "error", text: message, isErr: true}
		},
		OnScriptError: func(name, message, stack string) {
			label := name
			if label == "" {
				label = "uncaught"
			}
			m.feed <- runEventMsg{label: label, text: message, isErr: true, stack: stack}
		},
	}

	go func() {
		ctx := context.Background()
		exec, err := runtime.New(cfg)
		if err != nil {
			m.feed <- runDoneMsg{code: 1, err: err}
			return
		}
		code, err := exec.Execute(ctx)
		exec.Release(ctx)
		m.feed <- runDoneMsg{code: code, err: err}
	}()
	return nil
}

func (m *interactiveModel) waitForEvent() tea.Msg {
	return <-m.feed
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}

	case runEventMsg:
		m.events = append(m.events, runEvent(msg))
		return m, m.waitForEvent

	case runDoneMsg:
		m.done = true
		m.code = msg.code
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Script Runner"))
	b.WriteString(" ")
	b.WriteString(m.cfg.EntryPath)
	b.WriteString("\n\n")

	for _, ev := range m.events {
		if ev.isErr {
			b.WriteString(errorStyle.Render(ev.label) + " " + ev.text)
		} else {
			b.WriteString(phaseStyle.Render(ev.label) + " " + ev.text)
		}
		b.WriteString("\n")
		if ev.stack != "" {
			b.WriteString(stackStyle.Render(ev.stack))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("failed: %v", m.err)))
		} else if m.code == 0 {
			b.WriteString(okStyle.Render("completed, exit code 0"))
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("completed, exit code %d", m.code)))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/q quit"))
	} else {
		b.WriteString(m.spin.View())
		b.WriteString(" running")
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q abort"))
	}

	return b.String()
}

func runInteractive(cfg runtime.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
