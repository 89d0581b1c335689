package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Input is a single-line text input.
type Input struct {
	label       string
	value       string
	placeholder string
	width       int
	labelWidth  int
	focused     bool
	cursorPos   int
	maxLength   int
	required    bool
	numeric     bool
	upper       bool
	err         string
}

// NewInput creates a new input field.
func NewInput(label string) *Input {
	return &Input{
		label:      label,
		width:      20,
		labelWidth: 16,
		maxLength:  64,
	}
}

// SetValue sets the input value.
func (i *Input) SetValue(v string) *Input {
	i.value = v
	i.cursorPos = len(v)
	return i
}

// SetPlaceholder sets the placeholder text.
func (i *Input) SetPlaceholder(p string) *Input {
	i.placeholder = p
	return i
}

// SetWidth sets the input width.
func (i *Input) SetWidth(w int) *Input {
	i.width = w
	return i
}

// SetLabelWidth sets the width reserved for the label.
func (i *Input) SetLabelWidth(w int) *Input {
	i.labelWidth = w
	return i
}

// SetMaxLength sets the maximum input length.
func (i *Input) SetMaxLength(m int) *Input {
	i.maxLength = m
	return i
}

// SetRequired marks the field as required.
func (i *Input) SetRequired(r bool) *Input {
	i.required = r
	return i
}

// SetNumeric restricts input to digits.
func (i *Input) SetNumeric(n bool) *Input {
	i.numeric = n
	return i
}

// SetUppercase upper-cases typed letters, as scanners emit them.
func (i *Input) SetUppercase(u bool) *Input {
	i.upper = u
	return i
}

// SetError sets an error message.
func (i *Input) SetError(e string) *Input {
	i.err = e
	return i
}

// Focus sets the focus state.
func (i *Input) Focus(focused bool) {
	i.focused = focused
	if focused && i.cursorPos > len(i.value) {
		i.cursorPos = len(i.value)
	}
}

// IsFocused returns the focus state.
func (i *Input) IsFocused() bool {
	return i.focused
}

// Value returns the current value.
func (i *Input) Value() string {
	return i.value
}

// Label returns the field label.
func (i *Input) Label() string {
	return i.label
}

// Clear empties the input and its error.
func (i *Input) Clear() {
	i.value = ""
	i.cursorPos = 0
	i.err = ""
}

// HandleKey handles a key press and reports whether the value changed.
func (i *Input) HandleKey(key string) bool {
	if !i.focused {
		return false
	}

	before := i.value
	switch key {
	case "backspace":
		if len(i.value) > 0 && i.cursorPos > 0 {
			i.value = i.value[:i.cursorPos-1] + i.value[i.cursorPos:]
			i.cursorPos--
		}
	case "delete":
		if i.cursorPos < len(i.value) {
			i.value = i.value[:i.cursorPos] + i.value[i.cursorPos+1:]
		}
	case "left":
		if i.cursorPos > 0 {
			i.cursorPos--
		}
	case "right":
		if i.cursorPos < len(i.value) {
			i.cursorPos++
		}
	case "home", "ctrl+a":
		i.cursorPos = 0
	case "end", "ctrl+e":
		i.cursorPos = len(i.value)
	case "ctrl+u":
		i.value = i.value[i.cursorPos:]
		i.cursorPos = 0
	default:
		if len(key) != 1 || len(i.value) >= i.maxLength {
			break
		}
		if i.numeric && (key[0] < '0' || key[0] > '9') {
			break
		}
		if i.upper {
			key = strings.ToUpper(key)
		}
		i.value = i.value[:i.cursorPos] + key + i.value[i.cursorPos:]
		i.cursorPos++
	}
	return i.value != before
}

// Validate validates the input.
func (i *Input) Validate() bool {
	if i.required && strings.TrimSpace(i.value) == "" {
		i.err = "Required"
		return false
	}
	i.err = ""
	return true
}

// Render renders the input field.
func (i *Input) Render() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(i.labelWidth)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))

	label := i.label
	if i.required {
		label += "*"
	}
	label += ":"

	var display string
	displayLen := len(i.value)
	switch {
	case i.value == "" && i.placeholder != "" && !i.focused:
		display = mutedStyle.Render(i.placeholder)
		displayLen = len(i.placeholder)
	case i.focused:
		display = focusStyle.Render(i.value[:i.cursorPos] + "_" + i.value[i.cursorPos:])
		displayLen++
	default:
		display = valueStyle.Render(i.value)
	}

	if displayLen < i.width {
		display += strings.Repeat(" ", i.width-displayLen)
	}

	result := labelStyle.Render(label) + " " + display
	if i.err != "" {
		result += " " + errStyle.Render(i.err)
	}
	return result
}

// Form is a vertical list of inputs with keyboard navigation.
type Form struct {
	title      string
	help       string
	fields     []*Input
	focusIndex int
	submitted  bool
	cancelled  bool
	err        string
}

// NewForm creates a new form.
func NewForm(title string) *Form {
	return &Form{
		title: title,
		help:  "Tab/Down:Next  Shift+Tab/Up:Prev  Ctrl+S:Submit  Esc:Cancel",
	}
}

// SetHelp replaces the key hint line.
func (f *Form) SetHelp(help string) *Form {
	f.help = help
	return f
}

// AddField adds a field to the form.
func (f *Form) AddField(field *Input) *Form {
	f.fields = append(f.fields, field)
	if len(f.fields) == 1 {
		field.Focus(true)
	}
	return f
}

// Fields returns the form inputs in order.
func (f *Form) Fields() []*Input {
	return f.fields
}

// FocusIndex returns the focused field.
func (f *Form) FocusIndex() int {
	return f.focusIndex
}

// HandleKey handles form navigation.
func (f *Form) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.nextField()
	case "shift+tab", "up":
		f.prevField()
	case "ctrl+s":
		f.submitted = true
	case "esc":
		f.cancelled = true
	case "enter":
		if f.focusIndex == len(f.fields)-1 {
			f.submitted = true
		} else {
			f.nextField()
		}
	default:
		if f.focusIndex < len(f.fields) {
			f.fields[f.focusIndex].HandleKey(key)
		}
	}
}

func (f *Form) nextField() {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = (f.focusIndex + 1) % len(f.fields)
	f.fields[f.focusIndex].Focus(true)
}

func (f *Form) prevField() {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex--
	if f.focusIndex < 0 {
		f.focusIndex = len(f.fields) - 1
	}
	f.fields[f.focusIndex].Focus(true)
}

// IsSubmitted returns true if form was submitted.
func (f *Form) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled returns true if form was cancelled.
func (f *Form) IsCancelled() bool {
	return f.cancelled
}

// Reject reopens a submitted form with an error message.
func (f *Form) Reject(err string) {
	f.submitted = false
	f.err = err
}

// SetError sets an error message.
func (f *Form) SetError(err string) {
	f.err = err
}

// Error returns the current form error.
func (f *Form) Error() string {
	return f.err
}

// Render renders the form.
func (f *Form) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("=== %s ===", f.title)))
	b.WriteString("\n\n")

	for _, field := range f.fields {
		b.WriteString(field.Render())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Error: " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(f.help))

	return b.String()
}
