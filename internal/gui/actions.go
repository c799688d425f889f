package gui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"codeberg.org/snonux/dsreview/internal/review"
)

const graphemeDebounce = 500 * time.Millisecond

// onReload applies the sidebar settings: it reopens the session with the
// new configuration and renders the selected rows.
func (a *Application) onReload() {
	values := formValues{
		Dataset:   a.datasetEntry.Text,
		Filelist:  a.filelistEntry.Text,
		Delimiter: a.delimiterEntry.Text,
		Start:     a.startEntry.Text,
		End:       a.endEntry.Text,
		Sort:      a.sortSelect.Selected,
		Dict:      a.dictEntry.Text,
	}

	a.datasetListing.SetText(datasetListing(values.Dataset))

	cfg, err := values.apply(a.config.Review)
	if err != nil {
		a.showError(err)
		return
	}
	a.updateStatus(fmt.Sprintf("Loading %s...", cfg.FilelistPath()))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sess, err := a.config.Open(a.ctx, cfg, a.logger)
		if err != nil {
			fyne.Do(func() { a.showError(err) })
			return
		}
		rows, err := sess.Rows(a.ctx)
		if err != nil {
			sess.Close()
			fyne.Do(func() { a.showError(err) })
			return
		}

		a.mu.Lock()
		old := a.session
		a.session = sess
		a.total = sess.TotalRows()
		a.mu.Unlock()
		if old != nil {
			old.Close()
		}

		fyne.Do(func() {
			a.renderRows(rows)
			a.updateStatus(fmt.Sprintf("Loaded %s", cfg.FilelistPath()))
		})
	}()
}

// refreshRows re-renders the current window, e.g. after the dictionary or a
// transcription changed.
func (a *Application) refreshRows() {
	sess := a.currentSession()
	if sess == nil {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		rows, err := sess.Rows(a.ctx)
		fyne.Do(func() {
			if err != nil {
				a.showError(err)
				return
			}
			a.renderRows(rows)
		})
	}()
}

// renderRows replaces the row list. Must run on the UI goroutine.
func (a *Application) renderRows(rows []review.RenderedRow) {
	for _, v := range a.rowViews {
		v.Stop()
	}
	a.rowViews = a.rowViews[:0]
	a.rowsBox.RemoveAll()

	unknown := 0
	for _, row := range rows {
		v := NewRowView(row, a.onSubmitEdit, a.onSpeakText)
		a.rowViews = append(a.rowViews, v)
		a.rowsBox.Add(v)
		if len(row.Unknown) > 0 {
			unknown++
		}
	}
	a.rowsBox.Refresh()

	a.summaryLabel.SetText(fmt.Sprintf("%d of %d rows, %d with unknown words",
		len(rows), a.totalRows(), unknown))
	a.updateNavigation()
}

// onSubmitEdit saves an edited transcription
func (a *Application) onSubmitEdit(index int, text string) {
	sess := a.currentSession()
	if sess == nil {
		return
	}
	text = strings.TrimSpace(text)
	a.updateStatus(fmt.Sprintf("Saving row %d...", index))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := sess.EditTranscription(a.ctx, index, text); err != nil {
			fyne.Do(func() { a.showError(fmt.Errorf("row %d: %w", index, err)) })
			return
		}
		fyne.Do(func() { a.updateStatus(fmt.Sprintf("Row %d saved", index)) })
		a.refreshRows()
	}()
}

// onGraphemeChanged fills in a suggested pronunciation once typing pauses
func (a *Application) onGraphemeChanged(text string) {
	a.mu.Lock()
	if a.graphemeTimer != nil {
		a.graphemeTimer.Stop()
	}
	word := strings.TrimSpace(text)
	if word == "" {
		a.mu.Unlock()
		a.lookupLabel.SetText("")
		return
	}
	a.graphemeTimer = time.AfterFunc(graphemeDebounce, func() {
		a.suggest(word)
	})
	a.mu.Unlock()
}

// suggest runs off the UI goroutine
func (a *Application) suggest(word string) {
	sess := a.currentSession()
	if sess == nil {
		return
	}

	lookup, err := sess.CheckWord(a.ctx, word)
	if err != nil {
		fyne.Do(func() { a.showError(err) })
		return
	}

	var lines []string
	for _, w := range lookup.Known() {
		entries, err := sess.Store().Lookup(a.ctx, w)
		if err != nil {
			continue
		}
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("%s: %s", e.Grapheme, e.Phonemes))
		}
	}
	for _, w := range lookup.Unknown() {
		lines = append(lines, fmt.Sprintf("%s: not in dictionary", w))
	}

	suggestion := ""
	if len(lookup.Unknown()) > 0 {
		suggestion, err = sess.SuggestARPAbet(a.ctx, word)
		if err != nil {
			a.logger.Warn("prediction failed", slog.String("word", word), slog.String("error", err.Error()))
		}
	}

	fyne.Do(func() {
		// The user may have typed on while the lookup ran.
		if strings.TrimSpace(a.graphemeEntry.Text) != word {
			return
		}
		a.lookupLabel.SetText(strings.Join(lines, "\n"))
		if suggestion != "" {
			a.arpabetEntry.SetText(suggestion)
		}
	})
}

// onAddWord appends the grapheme and ARPAbet to the dictionary
func (a *Application) onAddWord() {
	sess := a.currentSession()
	if sess == nil {
		a.updateStatus("Load a filelist first")
		return
	}
	grapheme := strings.TrimSpace(a.graphemeEntry.Text)
	arpabet := strings.TrimSpace(a.arpabetEntry.Text)
	if grapheme == "" || arpabet == "" {
		a.updateStatus("Enter a grapheme and its ARPAbet")
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		inserted, err := sess.AddWord(a.ctx, grapheme, arpabet)
		fyne.Do(func() {
			switch {
			case err != nil:
				a.showError(err)
			case inserted:
				a.updateStatus(fmt.Sprintf("Added %s %s", strings.ToLower(grapheme), arpabet))
				a.graphemeEntry.SetText("")
				a.arpabetEntry.SetText("")
			default:
				a.updateStatus(fmt.Sprintf("%s is already in the dictionary", grapheme))
			}
		})
		if err == nil && inserted {
			a.refreshRows()
		}
	}()
}

// onTestARPAbet queues a preview of the ARPAbet entry
func (a *Application) onTestARPAbet() {
	arpabet := strings.TrimSpace(a.arpabetEntry.Text)
	if arpabet == "" {
		a.updateStatus("Enter an ARPAbet sequence to test")
		return
	}
	a.queue.Add(ClipARPAbet, arpabet)
	a.updateQueueStatus()
}

// onSpeakText queues a plain text synthesis
func (a *Application) onSpeakText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.queue.Add(ClipText, text)
	a.updateQueueStatus()
}

// runClip is the queue worker's job function
func (a *Application) runClip(ctx context.Context, job *ClipJob) (string, error) {
	sess := a.currentSession()
	if sess == nil {
		return "", fmt.Errorf("no filelist loaded")
	}
	switch job.Kind {
	case ClipText:
		return sess.SpeakText(ctx, job.Input)
	default:
		return sess.Preview(ctx, job.Input)
	}
}
