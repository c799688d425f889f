package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// CustomMultiLineEntry extends widget.Entry with Escape to cancel and
// Ctrl+Enter to submit. Plain Enter still inserts a line break.
type CustomMultiLineEntry struct {
	widget.Entry
	onEscape func()
	onSubmit func()
}

// NewCustomMultiLineEntry creates a new custom multi-line entry
func NewCustomMultiLineEntry() *CustomMultiLineEntry {
	entry := &CustomMultiLineEntry{}
	entry.MultiLine = true
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *CustomMultiLineEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// TypedShortcut handles Ctrl+Enter (Cmd+Enter on macOS)
func (e *CustomMultiLineEntry) TypedShortcut(s fyne.Shortcut) {
	if isSubmitShortcut(s) && e.onSubmit != nil {
		e.onSubmit()
		return
	}
	e.Entry.TypedShortcut(s)
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *CustomMultiLineEntry) SetOnEscape(f func()) {
	e.onEscape = f
}

// SetOnSubmit sets the callback for Ctrl+Enter
func (e *CustomMultiLineEntry) SetOnSubmit(f func()) {
	e.onSubmit = f
}

func isSubmitShortcut(s fyne.Shortcut) bool {
	cs, ok := s.(*desktop.CustomShortcut)
	if !ok {
		return false
	}
	return (cs.KeyName == fyne.KeyReturn || cs.KeyName == fyne.KeyEnter) &&
		cs.Modifier == fyne.KeyModifierShortcutDefault
}

// CustomEntry extends widget.Entry to handle Escape key (single-line version)
type CustomEntry struct {
	widget.Entry
	onEscape func()
}

// NewCustomEntry creates a new custom single-line entry
func NewCustomEntry() *CustomEntry {
	entry := &CustomEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *CustomEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *CustomEntry) SetOnEscape(f func()) {
	e.onEscape = f
}
