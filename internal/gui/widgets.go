package gui

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/dsreview/internal/annotate"
	"codeberg.org/snonux/dsreview/internal/review"
)

var tagColors = map[string]fyne.ThemeColorName{
	annotate.TagUnknown: theme.ColorNameError,
	annotate.TagRepeat:  theme.ColorNameWarning,
}

// spanSegments converts annotated spans to rich text. A tagged word is
// colored and followed by its tag in small bold text.
func spanSegments(spans []annotate.Span) []widget.RichTextSegment {
	segments := make([]widget.RichTextSegment, 0, len(spans))
	for _, s := range spans {
		if !s.Tagged() {
			segments = append(segments, &widget.TextSegment{
				Text:  s.Text,
				Style: widget.RichTextStyleInline,
			})
			continue
		}

		color, ok := tagColors[s.Tag]
		if !ok {
			color = theme.ColorNamePrimary
		}
		segments = append(segments,
			&widget.TextSegment{
				Text: strings.TrimSuffix(s.Text, " "),
				Style: widget.RichTextStyle{
					ColorName: color,
					Inline:    true,
					TextStyle: fyne.TextStyle{Bold: true},
				},
			},
			&widget.TextSegment{
				Text: " " + s.Tag + " ",
				Style: widget.RichTextStyle{
					ColorName: color,
					Inline:    true,
					SizeName:  theme.SizeNameCaptionText,
					TextStyle: fyne.TextStyle{Italic: true},
				},
			},
		)
	}
	return segments
}

// RowView shows one filelist row: its audio, the annotated transcription
// and an editor revealed by the Edit check.
type RowView struct {
	widget.BaseWidget

	container  *fyne.Container
	header     *widget.Label
	text       *widget.RichText
	player     *AudioPlayer
	editCheck  *widget.Check
	editEntry  *CustomMultiLineEntry
	submitBtn  *ttwidget.Button
	speakBtn   *ttwidget.Button
	editorArea *fyne.Container

	row      review.RenderedRow
	onSubmit func(index int, text string)
	onSpeak  func(text string)
}

// NewRowView creates the widget for row. onSubmit receives the edited
// transcription; onSpeak the text to synthesize for comparison.
func NewRowView(row review.RenderedRow, onSubmit func(index int, text string), onSpeak func(text string)) *RowView {
	v := &RowView{row: row, onSubmit: onSubmit, onSpeak: onSpeak}

	v.header = widget.NewLabel(rowHeader(row))
	v.header.TextStyle = fyne.TextStyle{Monospace: true}

	v.text = widget.NewRichText(spanSegments(row.Spans)...)
	v.text.Wrapping = fyne.TextWrapWord

	v.player = NewAudioPlayer()
	v.player.SetAudioFile(row.AudioFile)

	v.editEntry = NewCustomMultiLineEntry()
	v.editEntry.Wrapping = fyne.TextWrapWord
	v.editEntry.SetText(row.Row.Transcription)
	v.editEntry.SetOnEscape(v.cancelEdit)
	v.editEntry.SetOnSubmit(v.submit)

	v.submitBtn = ttwidget.NewButtonWithIcon("Submit", theme.ConfirmIcon(), v.submit)
	v.submitBtn.SetToolTip("Save the transcription to the filelist (Ctrl+Enter)")

	v.speakBtn = ttwidget.NewButtonWithIcon("", theme.VolumeUpIcon(), v.speak)
	v.speakBtn.SetToolTip("Synthesize the edited text with the TTS voice")

	v.editorArea = container.NewBorder(nil, nil, nil,
		container.NewVBox(v.submitBtn, v.speakBtn), v.editEntry)
	v.editorArea.Hide()

	v.editCheck = widget.NewCheck("Edit", func(on bool) {
		if on {
			v.editorArea.Show()
		} else {
			v.editorArea.Hide()
		}
	})

	v.container = container.NewVBox(
		container.NewBorder(nil, nil, v.header, v.editCheck, v.player),
		v.text,
		v.editorArea,
		widget.NewSeparator(),
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *RowView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Stop stops playback of the row's audio.
func (v *RowView) Stop() {
	v.player.Clear()
}

func (v *RowView) submit() {
	if v.onSubmit != nil {
		v.onSubmit(v.row.Row.Index, v.editEntry.Text)
	}
}

func (v *RowView) speak() {
	if v.onSpeak != nil {
		v.onSpeak(v.editEntry.Text)
	}
}

func (v *RowView) cancelEdit() {
	v.editEntry.SetText(v.row.Row.Transcription)
	v.editCheck.SetChecked(false)
}

func rowHeader(row review.RenderedRow) string {
	header := fmt.Sprintf("#%d %s", row.Row.Index, filepath.Base(row.Row.AudioPath))
	if n := len(row.Unknown); n > 0 {
		header += fmt.Sprintf("  (%d unknown)", n)
	}
	return header
}
