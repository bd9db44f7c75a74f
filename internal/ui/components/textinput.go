package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sensei/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for free-form answers (code and
// open-ended questions).
type TextInput struct {
	Model     textinput.Model
	submitted bool
	valid     bool
	pending   bool
}

func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	if t.submitted {
		switch {
		case t.pending:
			view += " " + lipgloss.NewStyle().Foreground(theme.Accent).Render("…")
		case t.valid:
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		default:
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input text.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Submit marks the input graded. pending shows the awaiting-review
// marker instead of right/wrong.
func (t *TextInput) Submit(valid, pending bool) {
	t.submitted = true
	t.valid = valid
	t.pending = pending
}
