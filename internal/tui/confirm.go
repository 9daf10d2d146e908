package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	confirmHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	choiceStyle         = lipgloss.NewStyle().Padding(0, 2)
	selectedChoiceStyle = choiceStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
)

type ChoiceResult struct {
	Choice  string
	Aborted bool
}

type choiceKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var choiceKeys = choiceKeyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "previous")),
	Next:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
}

type choiceModel struct {
	message  string
	choices  []string
	selected int
	done     bool
	result   ChoiceResult
}

func newChoiceModel(message string, choices []string) choiceModel {
	return choiceModel{message: message, choices: choices}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, choiceKeys.Cancel):
		m.result.Aborted = true
		m.done = true
		return m, tea.Quit

	case key.Matches(keyMsg, choiceKeys.Prev):
		if len(m.choices) > 0 {
			m.selected = (m.selected + len(m.choices) - 1) % len(m.choices)
		}
		return m, nil

	case key.Matches(keyMsg, choiceKeys.Next):
		if len(m.choices) > 0 {
			m.selected = (m.selected + 1) % len(m.choices)
		}
		return m, nil

	case key.Matches(keyMsg, choiceKeys.Select):
		if len(m.choices) > 0 {
			m.result.Choice = m.choices[m.selected]
		}
		m.done = true
		return m, tea.Quit
	}

	// Quick select by first letter.
	typed := strings.ToLower(keyMsg.String())
	for i, c := range m.choices {
		if c != "" && strings.ToLower(c[:1]) == typed {
			m.selected = i
			m.result.Choice = c
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(confirmLabelStyle.Render(m.message) + "\n\n")

	rendered := make([]string, len(m.choices))
	for i, c := range m.choices {
		if i == m.selected {
			rendered[i] = selectedChoiceStyle.Render(c)
		} else {
			rendered[i] = choiceStyle.Render(c)
		}
	}
	sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(rendered, "  ")))
	sb.WriteString("\n" + confirmHintStyle.Render("←/→: select • enter: confirm • first letter: quick select • esc: cancel"))

	return sb.String()
}

// RunChoice asks message on out and returns the choice picked with keys
// read from in.
func RunChoice(ctx context.Context, in io.Reader, out io.Writer, message string, choices []string) (ChoiceResult, error) {
	m := newChoiceModel(message, choices)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))

	finalModel, err := p.Run()
	if err != nil {
		return ChoiceResult{Aborted: true}, err
	}

	return finalModel.(choiceModel).result, nil
}
