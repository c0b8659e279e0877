package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pinpanel/internal/config"
)

// lockScreen renders the passcode prompt that fronts the panel: masked
// entry dots, a mismatch banner and a numeric keypad. All state lives in
// the gate; this view only draws it.
type lockScreen struct {
	app *PanelApp

	prompt     *widget.Label
	dots       *widget.Label
	errorLabel *widget.Label
	digitKeys  []*widget.Button
	clearKey   *widget.Button

	root fyne.CanvasObject
}

func (app *PanelApp) newLockScreen() *lockScreen {
	ls := &lockScreen{app: app}

	ls.prompt = widget.NewLabelWithStyle(app.GetMsg(config.TKeyLockPrompt), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	ls.dots = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true})

	ls.errorLabel = widget.NewLabelWithStyle(app.GetMsg(config.TKeyLockMismatch), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	ls.errorLabel.Importance = widget.DangerImportance
	ls.errorLabel.Hide()

	for _, r := range "123456789" {
		ls.digitKeys = append(ls.digitKeys, ls.newDigitKey(r))
	}
	zeroKey := ls.newDigitKey('0')
	ls.digitKeys = append(ls.digitKeys, zeroKey)

	ls.clearKey = widget.NewButton(config.KeypadClearLabel, func() {
		ls.app.Gate.Clear()
	})

	keypadCells := make([]fyne.CanvasObject, 0, 12)
	for _, b := range ls.digitKeys[:9] {
		keypadCells = append(keypadCells, b)
	}
	keypadCells = append(keypadCells, ls.clearKey, zeroKey, layout.NewSpacer())

	keypad := container.NewGridWithColumns(config.KeypadColumns, keypadCells...)

	ls.root = container.NewCenter(container.NewVBox(
		ls.prompt,
		ls.dots,
		ls.errorLabel,
		keypad,
	))

	return ls
}

func (ls *lockScreen) newDigitKey(r rune) *widget.Button {
	return widget.NewButton(string(r), func() {
		ls.app.Gate.SubmitDigit(r)
	})
}

// onTypedRune feeds physical keyboard input to the gate while the lock
// screen is up. The gate itself rejects non-digits and overflow.
func (app *PanelApp) onTypedRune(r rune) {
	if app.Gate.Unlocked() {
		return
	}
	app.Gate.SubmitDigit(r)
}

// onTypedKey maps Backspace, Delete and Escape to the keypad's C key.
func (app *PanelApp) onTypedKey(ev *fyne.KeyEvent) {
	if app.Gate.Unlocked() {
		return
	}
	switch ev.Name {
	case fyne.KeyBackspace, fyne.KeyDelete, fyne.KeyEscape:
		app.Gate.Clear()
	}
}

// refresh redraws the entry dots and the mismatch banner from gate state.
// Must run on the UI goroutine.
func (ls *lockScreen) refresh() {
	n := len(ls.app.Gate.Entry())
	if n > config.PasscodeLength {
		n = config.PasscodeLength
	}
	ls.dots.SetText(strings.Repeat(config.GlyphDotFilled, n) + strings.Repeat(config.GlyphDotEmpty, config.PasscodeLength-n))

	if ls.app.Gate.Mismatch() {
		ls.errorLabel.Show()
	} else {
		ls.errorLabel.Hide()
	}
}

// applyTexts re-applies localized labels after a language change.
func (ls *lockScreen) applyTexts() {
	ls.prompt.SetText(ls.app.GetMsg(config.TKeyLockPrompt))
	ls.errorLabel.SetText(ls.app.GetMsg(config.TKeyLockMismatch))
}

// keyFor returns the keypad button carrying the given label, for tests and
// keyboard shortcuts.
func (ls *lockScreen) keyFor(label string) *widget.Button {
	if label == config.KeypadClearLabel {
		return ls.clearKey
	}
	for _, b := range ls.digitKeys {
		if b.Text == label {
			return b
		}
	}
	return nil
}
