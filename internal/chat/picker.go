// ABOUTME: Bubble Tea picker for follow-up buttons offered after a response
// ABOUTME: Up/down to move, enter to activate, esc or q to skip

package chat

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true)
	pickerSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	pickerHintStyle     = lipgloss.NewStyle().Faint(true)
)

// pickerModel is a tea.Model with value semantics.
type pickerModel struct {
	buttons []Button
	cursor  int
	chosen  int // -1 until a choice or skip
	done    bool
}

func newPickerModel(buttons []Button) pickerModel {
	return pickerModel{buttons: buttons, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.buttons)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Follow-up actions"))
	b.WriteByte('\n')
	for i, btn := range m.buttons {
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + btn.Title))
		} else {
			b.WriteString("  " + btn.Title)
		}
		b.WriteByte('\n')
	}
	b.WriteString(pickerHintStyle.Render("enter: select  esc: skip"))
	return b.String()
}

// PickButton shows buttons and returns the chosen one, or false when the
// user skipped.
func PickButton(buttons []Button, in io.Reader, out io.Writer) (Button, bool, error) {
	if len(buttons) == 0 {
		return Button{}, false, nil
	}
	prog := tea.NewProgram(newPickerModel(buttons), tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		return Button{}, false, fmt.Errorf("button picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.chosen < 0 {
		return Button{}, false, nil
	}
	return m.buttons[m.chosen], true, nil
}

// CollectionInstructions is the placeholder activation of the "open"
// button: it lists the requests made so the user can add them by hand.
func CollectionInstructions(rounds []ToolCallRound) string {
	var b strings.Builder
	b.WriteString("Saving to collections is not automated yet. Add these requests to your API Try It collection manually:\n")
	for _, round := range rounds {
		for _, call := range round.Calls {
			fmt.Fprintf(&b, "  - %s %s\n", call.Name, string(call.Args))
		}
	}
	return b.String()
}
