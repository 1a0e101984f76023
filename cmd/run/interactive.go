package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/embwasm/hostshim/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	gaugeUsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	gaugeFreeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	rt       *runtime.Runtime
	instance *runtime.Instance
	filename string
	capacity uint32
	pages    uint32
	result   string
	funcs    []string
	input    textinput.Model
	selected int
	state    modelState
}

type loadedMsg struct {
	err      error
	rt       *runtime.Runtime
	instance *runtime.Instance
	funcs    []string
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(filename string, capacity, pages uint32) *interactiveModel {
	input := textinput.New()
	input.Placeholder = "1,2,3"
	input.CharLimit = 64
	input.Width = 32

	return &interactiveModel{
		filename: filename,
		capacity: capacity,
		pages:    pages,
		input:    input,
		state:    stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	rt, err := runtime.New(ctx, &runtime.Config{
		ArenaCapacity: m.capacity,
		GuestPages:    m.pages,
	})
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := rt.Load(ctx, data)
	if err != nil {
		rt.Close(ctx)
		return loadedMsg{err: err}
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		rt.Close(ctx)
		return loadedMsg{err: err}
	}

	return loadedMsg{rt: rt, instance: inst, funcs: mod.ExportedFunctions()}
}

func (m *interactiveModel) callSelected() tea.Cmd {
	name := m.funcs[m.selected]
	argsStr := m.input.Value()
	return func() tea.Msg {
		args, err := parseArgs(argsStr)
		if err != nil {
			return callResultMsg{err: err}
		}

		results, err := m.instance.Call(context.Background(), name, args...)
		if err != nil {
			return callResultMsg{err: err}
		}

		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = fmt.Sprintf("%d", r)
		}
		out := strings.Join(parts, ", ")
		if out == "" {
			out = "(no results)"
		}
		return callResultMsg{result: out}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.rt = msg.rt
		m.instance = msg.instance
		m.funcs = msg.funcs
		return m, nil

	case callResultMsg:
		if msg.err != nil {
			m.result = errorStyle.Render(msg.err.Error())
		} else {
			m.result = resultStyle.Render(msg.result)
		}
		m.state = stateShowResult
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateSelectFunc:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.funcs)-1 {
					m.selected++
				}
			case "enter":
				if len(m.funcs) > 0 {
					m.state = stateInputArgs
					m.input.SetValue("")
					m.input.Focus()
					return m, textinput.Blink
				}
			}
		case stateInputArgs:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.state = stateSelectFunc
				m.input.Blur()
			case "enter":
				m.input.Blur()
				return m, m.callSelected()
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		case stateShowResult:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			default:
				m.state = stateSelectFunc
			}
		}
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostshim " + m.filename))
	b.WriteString("\n\n")

	if m.rt == nil {
		b.WriteString("loading...\n")
		return b.String()
	}

	b.WriteString(m.arenaGauge())
	b.WriteString("\n\n")

	for i, name := range m.funcs {
		line := "  " + funcStyle.Render(name)
		if i == m.selected {
			line = selectedStyle.Render("> " + name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.funcs) == 0 {
		b.WriteString(helpStyle.Render("  (no exported functions)"))
		b.WriteString("\n")
	}

	switch m.state {
	case stateInputArgs:
		b.WriteString("\nArguments: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter: call • esc: back"))
	case stateShowResult:
		b.WriteString("\nResult: ")
		b.WriteString(m.result)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("any key: back • q: quit"))
	default:
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓: select • enter: call • q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// arenaGauge renders arena occupancy as a fixed-width bar. The arena only
// ever fills: the bar never moves left.
func (m *interactiveModel) arenaGauge() string {
	a := m.rt.Arena()
	const width = 40

	used := int(uint64(a.Used()) * width / uint64(a.Capacity()))
	if used > width {
		used = width
	}

	bar := gaugeUsedStyle.Render(strings.Repeat("█", used)) +
		gaugeFreeStyle.Render(strings.Repeat("░", width-used))
	return fmt.Sprintf("Arena [%s] %d/%d bytes", bar, a.Used(), a.Capacity())
}

func runInteractive(filename string, capacity, pages uint32) error {
	m := newInteractiveModel(filename, capacity, pages)
	p := tea.NewProgram(m)

	final, err := p.Run()
	if err != nil {
		return err
	}

	fm := final.(*interactiveModel)
	if fm.rt != nil {
		fm.rt.Close(context.Background())
	}
	return fm.err
}
