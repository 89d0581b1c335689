package components

import (
	"strings"
	"testing"
)

func TestInput_RequiredValidation(t *testing.T) {
	input := NewInput("Location").SetRequired(true)

	if input.Validate() {
		t.Error("Expected validation to fail for empty required field")
	}

	input.SetValue("A1-01")
	if !input.Validate() {
		t.Error("Expected validation to pass with value set")
	}

	input.SetValue("   ")
	if input.Validate() {
		t.Error("Expected validation to fail for whitespace-only required field")
	}
}

func TestInput_Focus(t *testing.T) {
	input := NewInput("Location")

	if input.IsFocused() {
		t.Error("Should not be focused initially")
	}
	input.Focus(true)
	if !input.IsFocused() {
		t.Error("Should be focused after Focus(true)")
	}
	input.Focus(false)
	if input.IsFocused() {
		t.Error("Should not be focused after Focus(false)")
	}
}

func TestInput_HandleKey(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		opts    func(*Input)
		keys    []string
		want    string
		changed bool
	}{
		{name: "type", keys: []string{"A", "1", "-"}, want: "A1-", changed: true},
		{name: "backspace", initial: "E1-01", keys: []string{"backspace"}, want: "E1-0", changed: true},
		{name: "cursor movement", initial: "E101", keys: []string{"left", "left", "-"}, want: "E1-01", changed: true},
		{name: "home", initial: "1-01", keys: []string{"home", "A"}, want: "A1-01", changed: true},
		{name: "clear to start", initial: "A1-01", keys: []string{"ctrl+u"}, want: "", changed: true},
		{name: "uppercase", opts: func(i *Input) { i.SetUppercase(true) }, keys: []string{"p", "a", "l"}, want: "PAL", changed: true},
		{name: "numeric rejects letters", opts: func(i *Input) { i.SetNumeric(true) }, keys: []string{"1", "x", "5"}, want: "15", changed: true},
		{name: "max length", opts: func(i *Input) { i.SetMaxLength(2) }, keys: []string{"1", "2", "3"}, want: "12", changed: true},
		{name: "navigation only", initial: "B2", keys: []string{"left"}, want: "B2", changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewInput("Destination").SetValue(tt.initial)
			if tt.opts != nil {
				tt.opts(input)
			}
			input.Focus(true)

			changed := false
			for _, k := range tt.keys {
				if input.HandleKey(k) {
					changed = true
				}
			}
			if input.Value() != tt.want {
				t.Errorf("Value() = %q, want %q", input.Value(), tt.want)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
		})
	}
}

func TestInput_HandleKey_NotFocused(t *testing.T) {
	input := NewInput("Location")
	input.SetValue("A1-01")

	if input.HandleKey("X") {
		t.Error("Unfocused input reported a change")
	}
	if input.Value() != "A1-01" {
		t.Errorf("Should not handle keys when not focused, got %q", input.Value())
	}
}

func TestInput_Clear(t *testing.T) {
	input := NewInput("Location").SetValue("A1-01").SetError("Unknown")
	input.Clear()

	if input.Value() != "" {
		t.Errorf("Expected empty value, got %q", input.Value())
	}
	if strings.Contains(input.Render(), "Unknown") {
		t.Error("Expected error cleared")
	}
}

func TestInput_Render(t *testing.T) {
	t.Run("label and value", func(t *testing.T) {
		output := NewInput("Location").SetValue("A1-01").Render()
		if !strings.Contains(output, "Location") || !strings.Contains(output, "A1-01") {
			t.Errorf("Expected label and value in output: %q", output)
		}
	})

	t.Run("placeholder", func(t *testing.T) {
		output := NewInput("Scan").SetPlaceholder("serial, lot, pallet").Render()
		if !strings.Contains(output, "serial, lot, pallet") {
			t.Error("Expected placeholder in output when unfocused and empty")
		}
	})

	t.Run("cursor", func(t *testing.T) {
		input := NewInput("Scan").SetValue("S0")
		input.Focus(true)
		if !strings.Contains(input.Render(), "S0_") {
			t.Error("Expected cursor '_' in focused input output")
		}
	})

	t.Run("error", func(t *testing.T) {
		output := NewInput("Qty").SetError("exceeds stock").Render()
		if !strings.Contains(output, "exceeds stock") {
			t.Error("Expected error in output")
		}
	})
}

func TestForm_BasicFlow(t *testing.T) {
	form := NewForm("Pick quantities")

	input1 := NewInput("B001")
	input2 := NewInput("B002")
	form.AddField(input1)
	form.AddField(input2)

	if form.IsSubmitted() || form.IsCancelled() {
		t.Fatal("Form should start open")
	}
	if !input1.IsFocused() {
		t.Error("First field should be focused")
	}

	form.HandleKey("tab")
	if !input2.IsFocused() || input1.IsFocused() {
		t.Error("Focus should move to the second field after tab")
	}
	if form.FocusIndex() != 1 {
		t.Errorf("FocusIndex() = %d, want 1", form.FocusIndex())
	}

	form.HandleKey("shift+tab")
	form.HandleKey("shift+tab")
	if !input2.IsFocused() {
		t.Error("shift+tab should wrap to the last field")
	}

	form.HandleKey("2")
	if input2.Value() != "2" {
		t.Errorf("Expected key routed to focused field, got %q", input2.Value())
	}

	form.HandleKey("enter")
	if !form.IsSubmitted() {
		t.Error("Enter on the last field should submit")
	}
}

func TestForm_Reject(t *testing.T) {
	form := NewForm("Pick quantities")
	form.AddField(NewInput("B001"))
	form.HandleKey("ctrl+s")

	form.Reject("quantity exceeds stock")
	if form.IsSubmitted() {
		t.Error("Rejected form should be open again")
	}
	if form.Error() != "quantity exceeds stock" {
		t.Errorf("Error() = %q", form.Error())
	}
	if !strings.Contains(form.Render(), "quantity exceeds stock") {
		t.Error("Expected error message in form output")
	}
}

func TestForm_Cancel(t *testing.T) {
	form := NewForm("Test")
	form.AddField(NewInput("Field"))

	form.HandleKey("esc")
	if !form.IsCancelled() {
		t.Error("Form should be cancelled after Esc")
	}
}

func TestForm_Render(t *testing.T) {
	form := NewForm("Pick quantities").SetHelp("Enter:Next  Esc:Cancel")
	form.AddField(NewInput("B001").SetValue("20"))

	output := form.Render()
	for _, want := range []string{"Pick quantities", "B001", "20", "Enter:Next"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in form output", want)
		}
	}
}
