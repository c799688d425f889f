package gui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/dsreview/internal/audio"
)

// AudioPlayer is a custom widget for playing audio files
type AudioPlayer struct {
	widget.BaseWidget

	container   *fyne.Container
	playButton  *ttwidget.Button
	stopButton  *ttwidget.Button
	statusLabel *widget.Label

	player *audio.Player

	mu        sync.Mutex
	audioFile string
	cancel    context.CancelFunc
}

// NewAudioPlayer creates a new audio player widget
func NewAudioPlayer() *AudioPlayer {
	p := &AudioPlayer{player: audio.NewPlayer()}

	// Create controls with tooltips
	p.playButton = ttwidget.NewButton("", p.onPlay)
	p.playButton.Icon = theme.MediaPlayIcon()
	p.playButton.SetToolTip("Play audio")

	p.stopButton = ttwidget.NewButton("", p.onStop)
	p.stopButton.Icon = theme.MediaStopIcon()
	p.stopButton.SetToolTip("Stop audio")

	p.statusLabel = widget.NewLabel("No audio loaded")

	// Initially disable controls
	p.playButton.Disable()
	p.stopButton.Disable()

	p.container = container.NewHBox(
		p.playButton,
		p.stopButton,
		layout.NewSpacer(),
		p.statusLabel,
	)

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *AudioPlayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.container)
}

// SetAudioFile sets the audio file to play. A missing file is reported
// instead of enabling playback.
func (p *AudioPlayer) SetAudioFile(audioFile string) {
	p.onStop()

	p.mu.Lock()
	p.audioFile = audioFile
	p.mu.Unlock()

	if audioFile == "" {
		p.Clear()
		return
	}
	if _, err := os.Stat(audioFile); err != nil {
		p.playButton.Disable()
		p.statusLabel.SetText(fmt.Sprintf("Missing: %s", filepath.Base(audioFile)))
		return
	}
	p.playButton.Enable()
	p.statusLabel.SetText(filepath.Base(audioFile))
}

// Clear clears the audio player
func (p *AudioPlayer) Clear() {
	p.onStop()
	p.mu.Lock()
	p.audioFile = ""
	p.mu.Unlock()
	p.playButton.Disable()
	p.stopButton.Disable()
	p.statusLabel.SetText("No audio loaded")
}

// Play triggers audio playback
func (p *AudioPlayer) Play() {
	if !p.playButton.Disabled() {
		p.onPlay()
	}
}

// onPlay handles play button click
func (p *AudioPlayer) onPlay() {
	p.mu.Lock()
	file := p.audioFile
	playing := p.cancel != nil
	p.mu.Unlock()

	if file == "" {
		return
	}
	if playing {
		p.onStop()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd, err := p.player.Command(ctx, file)
	if err != nil {
		cancel()
		p.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		return
	}
	if err := cmd.Start(); err != nil {
		cancel()
		p.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		return
	}

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.playButton.SetIcon(theme.MediaPauseIcon())
	p.stopButton.Enable()
	p.statusLabel.SetText(fmt.Sprintf("Playing: %s", filepath.Base(file)))

	go func() {
		err := cmd.Wait()
		stopped := ctx.Err() != nil
		cancel()

		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()

		if stopped {
			return
		}
		fyne.Do(func() {
			p.playButton.SetIcon(theme.MediaPlayIcon())
			p.stopButton.Disable()
			if err != nil {
				p.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
			} else {
				p.statusLabel.SetText(fmt.Sprintf("Finished: %s", filepath.Base(file)))
			}
		})
	}()
}

// onStop handles stop button click
func (p *AudioPlayer) onStop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	file := p.audioFile
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	p.playButton.SetIcon(theme.MediaPlayIcon())
	p.stopButton.Disable()
	p.statusLabel.SetText(fmt.Sprintf("Stopped: %s", filepath.Base(file)))
}
