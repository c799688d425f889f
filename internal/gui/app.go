package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/dsreview/internal"
	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/review"
)

const overwriteWarning = "This will overwrite the filelist. Please use a copy."

// OpenFunc opens a review session. The GUI reopens the session whenever the
// sidebar settings are applied.
type OpenFunc func(ctx context.Context, cfg review.Config, logger *slog.Logger) (*review.Session, error)

// Config holds GUI application configuration
type Config struct {
	Review   review.Config
	Open     OpenFunc
	LogLevel string
}

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// Sidebar: dataset settings
	datasetEntry   *widget.Entry
	datasetListing *widget.Label
	filelistEntry  *widget.Entry
	delimiterEntry *widget.Entry
	startEntry     *widget.Entry
	endEntry       *widget.Entry
	sortSelect     *widget.Select
	dictEntry      *widget.Entry
	reloadButton   *ttwidget.Button

	// Sidebar: dictionary tools
	graphemeEntry *CustomEntry
	arpabetEntry  *widget.Entry
	lookupLabel   *widget.Label
	addWordButton *ttwidget.Button
	testButton    *ttwidget.Button
	previewPlayer *AudioPlayer

	// Main area
	rowsBox      *fyne.Container
	rowsScroll   *container.Scroll
	summaryLabel *widget.Label
	prevPageBtn  *ttwidget.Button
	nextPageBtn  *ttwidget.Button
	rowViews     []*RowView

	statusLabel      *widget.Label
	queueStatusLabel *widget.Label
	logViewer        *LogViewer

	// State management
	mu            sync.Mutex
	session       *review.Session
	total         int
	graphemeTimer *time.Timer

	queue  *ClipQueue
	config *Config
	logger *slog.Logger

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new GUI application
func New(config *Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	myApp := app.NewWithID("org.codeberg.snonux.dsreview")
	myApp.SetIcon(theme.MediaMusicIcon())

	a := &Application{
		app:    myApp,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	a.logViewer = NewLogViewer()
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	a.logger = slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, a.logViewer),
		&slog.HandlerOptions{Level: level}))

	a.queue = NewClipQueue(ctx, a.runClip)
	a.queue.SetCallbacks(a.onQueueStatusUpdate, a.onJobComplete)

	a.setupUI()
	a.updateQueueStatus()

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("dsreview v%s - Transcription Review", internal.Version))
	a.window.Resize(fyne.NewSize(1200, 800))

	split := container.NewHSplit(a.buildSidebar(), a.buildMain())
	split.SetOffset(0.3)

	a.statusLabel = widget.NewLabel("Ready")
	a.statusLabel.Wrapping = fyne.TextWrapWord
	a.queueStatusLabel = widget.NewLabel("")
	a.queueStatusLabel.TextStyle = fyne.TextStyle{Italic: true}

	statusSection := container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, a.queueStatusLabel, a.statusLabel),
		a.logViewer,
	)

	content := container.NewBorder(nil, statusSection, nil, nil, split)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()

	a.window.SetOnClosed(func() {
		a.cancel()
		a.queue.Stop()
		a.wg.Wait()
		a.closeSession()
	})

	a.setupKeyboardShortcuts()
}

func (a *Application) buildSidebar() fyne.CanvasObject {
	values := valuesFromConfig(a.config.Review)

	a.datasetEntry = widget.NewEntry()
	a.datasetEntry.SetText(values.Dataset)
	a.datasetEntry.OnSubmitted = func(string) { a.onReload() }

	a.datasetListing = widget.NewLabel("")
	a.datasetListing.TextStyle = fyne.TextStyle{Monospace: true}
	listingScroll := container.NewVScroll(a.datasetListing)
	listingScroll.SetMinSize(fyne.NewSize(0, 100))

	a.filelistEntry = widget.NewEntry()
	a.filelistEntry.SetText(values.Filelist)
	a.delimiterEntry = widget.NewEntry()
	a.delimiterEntry.SetText(values.Delimiter)
	a.startEntry = widget.NewEntry()
	a.startEntry.SetText(values.Start)
	a.endEntry = widget.NewEntry()
	a.endEntry.SetText(values.End)

	a.sortSelect = widget.NewSelect(
		[]string{dataset.OrderIndex.String(), dataset.OrderUnknownWords.String()},
		func(string) { a.onReload() },
	)
	a.sortSelect.Selected = values.Sort

	a.dictEntry = widget.NewEntry()
	a.dictEntry.SetText(values.Dict)
	a.dictEntry.SetPlaceHolder("cmudict.dict in the dataset path")

	a.reloadButton = ttwidget.NewButtonWithIcon("Load", theme.ViewRefreshIcon(), a.onReload)

	warning := widget.NewLabel(overwriteWarning)
	warning.Importance = widget.WarningImportance
	warning.Wrapping = fyne.TextWrapWord

	datasetForm := widget.NewForm(
		widget.NewFormItem("Dataset", a.datasetEntry),
		widget.NewFormItem("Filelist", a.filelistEntry),
		widget.NewFormItem("Delimiter", a.delimiterEntry),
		widget.NewFormItem("Start", a.startEntry),
		widget.NewFormItem("End", a.endEntry),
		widget.NewFormItem("Sort", a.sortSelect),
		widget.NewFormItem("Dictionary", a.dictEntry),
	)

	a.graphemeEntry = NewCustomEntry()
	a.graphemeEntry.SetPlaceHolder("Grapheme...")
	a.graphemeEntry.OnChanged = a.onGraphemeChanged
	a.graphemeEntry.SetOnEscape(func() {
		a.graphemeEntry.SetText("")
		a.window.Canvas().Unfocus()
	})

	a.arpabetEntry = widget.NewEntry()
	a.arpabetEntry.SetPlaceHolder("ARPAbet, e.g. HH AH0 L OW1")
	a.arpabetEntry.OnSubmitted = func(string) { a.onTestARPAbet() }

	a.lookupLabel = widget.NewLabel("")
	a.lookupLabel.Wrapping = fyne.TextWrapWord

	a.addWordButton = ttwidget.NewButtonWithIcon("Add to dictionary", theme.ContentAddIcon(), a.onAddWord)
	a.testButton = ttwidget.NewButtonWithIcon("Test arpabet", theme.MediaPlayIcon(), a.onTestARPAbet)
	a.previewPlayer = NewAudioPlayer()

	dictForm := widget.NewForm(
		widget.NewFormItem("Grapheme", a.graphemeEntry),
		widget.NewFormItem("ARPAbet", a.arpabetEntry),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Dataset", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		datasetForm,
		a.reloadButton,
		warning,
		listingScroll,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Dictionary", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dictForm,
		a.lookupLabel,
		container.NewGridWithColumns(2, a.addWordButton, a.testButton),
		a.previewPlayer,
	))
}

func (a *Application) buildMain() fyne.CanvasObject {
	a.rowsBox = container.NewVBox()
	a.rowsScroll = container.NewVScroll(a.rowsBox)

	a.summaryLabel = widget.NewLabel("")
	a.prevPageBtn = ttwidget.NewButton("", a.onPrevPage)
	a.prevPageBtn.Icon = theme.NavigateBackIcon()
	a.nextPageBtn = ttwidget.NewButton("", a.onNextPage)
	a.nextPageBtn.Icon = theme.NavigateNextIcon()
	a.prevPageBtn.Disable()
	a.nextPageBtn.Disable()

	helpButton := ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)
	helpButton.SetToolTip("Show hotkeys (h)")

	toolbar := container.NewBorder(nil, nil,
		container.NewHBox(a.prevPageBtn, a.nextPageBtn),
		helpButton,
		a.summaryLabel,
	)

	return container.NewBorder(toolbar, nil, nil, nil, a.rowsScroll)
}

// Run loads the configured dataset and starts the GUI application
func (a *Application) Run() {
	a.onReload()
	a.window.ShowAndRun()
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.reloadButton.SetToolTip("Load the filelist with these settings (r)")
	a.addWordButton.SetToolTip("Append grapheme and ARPAbet to the dictionary file")
	a.testButton.SetToolTip("Synthesize the ARPAbet with the TTS voice (t)")
	a.prevPageBtn.SetToolTip("Previous rows (b)")
	a.nextPageBtn.SetToolTip("Next rows (n)")
}

func (a *Application) currentSession() *review.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *Application) totalRows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

func (a *Application) closeSession() {
	a.mu.Lock()
	sess := a.session
	a.session = nil
	a.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	a.logger.Error("operation failed", slog.String("error", err.Error()))
	a.updateStatus("Error: " + err.Error())
}

// onQueueStatusUpdate is called from the queue worker
func (a *Application) onQueueStatusUpdate(job *ClipJob) {
	fyne.Do(func() {
		if job.Status == StatusProcessing {
			a.updateStatus(fmt.Sprintf("Synthesizing %q...", job.Input))
		}
		a.updateQueueStatus()
	})
}

// onJobComplete is called from the queue worker
func (a *Application) onJobComplete(job *ClipJob) {
	fyne.Do(func() {
		a.updateQueueStatus()
		if job.Error != nil {
			if errors.Is(job.Error, context.Canceled) {
				return
			}
			a.showError(fmt.Errorf("preview of %q: %w", job.Input, job.Error))
			return
		}
		a.updateStatus(fmt.Sprintf("Preview ready: %q (%s)", job.Input,
			job.CompletedAt.Sub(job.StartedAt).Round(100*time.Millisecond)))
		a.previewPlayer.SetAudioFile(job.AudioFile)
		a.previewPlayer.Play()
	})
}

func (a *Application) updateQueueStatus() {
	queued, processing, _, failed := a.queue.GetQueueStatus()
	var parts []string
	if processing > 0 {
		parts = append(parts, fmt.Sprintf("%d synthesizing", processing))
	}
	if queued > 0 {
		parts = append(parts, fmt.Sprintf("%d queued", queued))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	a.queueStatusLabel.SetText(strings.Join(parts, ", "))
}

// setupKeyboardShortcuts binds single-key shortcuts while no entry has focus
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.window.Canvas().Focused() != nil {
			return
		}
		switch r {
		case 'r', 'R':
			a.onReload()
		case 'n', 'N':
			a.onNextPage()
		case 'b', 'B':
			a.onPrevPage()
		case 'g', 'G':
			a.window.Canvas().Focus(a.graphemeEntry)
		case 'a', 'A':
			a.window.Canvas().Focus(a.arpabetEntry)
		case 't', 'T':
			a.onTestARPAbet()
		case 'p', 'P':
			a.previewPlayer.Play()
		case 'h', 'H', '?':
			a.onShowHotkeys()
		}
	})

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if a.window.Canvas().Focused() != nil {
			return
		}
		switch ev.Name {
		case fyne.KeyLeft:
			a.onPrevPage()
		case fyne.KeyRight:
			a.onNextPage()
		}
	})
}

func (a *Application) onShowHotkeys() {
	text := `r        reload the filelist
n / →    next rows
b / ←    previous rows
g        focus grapheme
a        focus ARPAbet
t        test ARPAbet
p        play the last preview
h        this help

In an edit box: Ctrl+Enter saves, Escape cancels.
In the grapheme box: Escape clears.`

	label := widget.NewLabel(text)
	label.TextStyle = fyne.TextStyle{Monospace: true}
	dialog.ShowCustom("Keyboard Shortcuts", "Close", label, a.window)
}
