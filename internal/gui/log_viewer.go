package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// messageLog keeps the newest lines first, bounded by max.
type messageLog struct {
	mu       sync.Mutex
	messages []string
	max      int
}

func (l *messageLog) add(lines ...string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range lines {
		if line == "" {
			continue
		}
		l.messages = append([]string{line}, l.messages...)
	}
	if len(l.messages) > l.max {
		l.messages = l.messages[:l.max]
	}
	return strings.Join(l.messages, "\n")
}

func (l *messageLog) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// LogViewer is a widget that displays the application's slog output. It is
// an io.Writer so it can back a slog handler directly.
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	log messageLog
}

// NewLogViewer creates a new log viewer widget
func NewLogViewer() *LogViewer {
	v := &LogViewer{log: messageLog{max: 500}}

	// Create log entry (read-only multiline)
	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 120))

	v.container = container.NewBorder(
		widget.NewLabel("Log (newest first):"),
		nil,
		nil,
		nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Write implements io.Writer. Each handler call writes one record.
func (v *LogViewer) Write(p []byte) (int, error) {
	text := v.log.add(strings.Split(strings.TrimRight(string(p), "\n"), "\n")...)

	fyne.Do(func() {
		v.logEntry.SetText(text)
		v.scrollView.Offset = fyne.NewPos(0, 0)
		v.scrollView.Refresh()
	})
	return len(p), nil
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	v.log.clear()
	fyne.Do(func() {
		v.logEntry.SetText("")
	})
}
