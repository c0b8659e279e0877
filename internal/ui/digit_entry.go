package ui

import (
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// DigitEntry is a custom Entry widget that only accepts numeric input,
// optionally capped at Limit runes. The numeric settings fields share it.
// It embeds widget.Entry to inherit all standard behavior.
type DigitEntry struct {
	widget.Entry

	// Limit caps the text length when greater than zero.
	Limit int
}

// NewDigitEntry creates a new instance of DigitEntry.
func NewDigitEntry() *DigitEntry {
	entry := &DigitEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune intercepts text input events and filters characters to allow
// only digits (0-9) within the configured length.
func (e *DigitEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if e.Limit > 0 && len(e.Text) >= e.Limit {
		return
	}
	e.Entry.TypedRune(r)
	// Shortcuts like Ctrl+V (Paste) are handled by TypedShortcut/TypedKey,
	// so non-numeric data could still be pasted. The Validator handles that.
}

// Keyboard overrides the default keyboard type so mobile devices show a
// numeric keypad.
func (e *DigitEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
