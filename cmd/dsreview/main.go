package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/dsreview/internal/annotate"
	"codeberg.org/snonux/dsreview/internal/audio"
	"codeberg.org/snonux/dsreview/internal/batch"
	"codeberg.org/snonux/dsreview/internal/cli"
	"codeberg.org/snonux/dsreview/internal/gui"
	"codeberg.org/snonux/dsreview/internal/models"
	"codeberg.org/snonux/dsreview/internal/review"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	logger := cli.NewLogger(os.Stderr, viper.GetString("log.level"), viper.GetString("log.format"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	cfg, err := cli.ReviewConfig()
	if err != nil {
		return err
	}

	if flags.ClearCache {
		return clearCaches(cli.AudioConfig(logger).CacheDir, cfg.DownloadDir)
	}

	provider, err := cli.NewProvider(cli.AudioConfig(logger), viper.GetBool("tts.fallback"))
	if err != nil {
		// Reviewing works without TTS; only previews need it.
		logger.Warn("TTS disabled", slog.String("reason", err.Error()))
		provider = nil
	}

	open := func(ctx context.Context, cfg review.Config, logger *slog.Logger) (*review.Session, error) {
		sess, err := review.Open(ctx, cfg, review.Deps{Provider: provider, Logger: logger})
		if err != nil {
			return nil, err
		}
		predictor, err := cli.NewPredictor(sess.Store(), logger)
		if err != nil {
			sess.Close()
			return nil, err
		}
		sess.SetPredictor(predictor)
		return sess, nil
	}

	if flags.GUIMode() {
		app := gui.New(&gui.Config{
			Review:   cfg,
			Open:     open,
			LogLevel: viper.GetString("log.level"),
		})
		app.Run()
		return nil
	}

	sess, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	switch {
	case flags.List:
		return listRows(ctx, sess)
	case flags.AddWord != "":
		return addWord(ctx, sess, flags.AddWord, flags.ARPAbet)
	case flags.Check != "":
		return checkText(ctx, sess, flags.Check)
	case flags.Preview != "":
		ref, err := sess.Preview(ctx, flags.Preview)
		return reportClip(ctx, ref, err, flags.Play)
	case flags.Say != "":
		ref, err := sess.SpeakText(ctx, flags.Say)
		return reportClip(ctx, ref, err, flags.Play)
	case flags.ImportFile != "":
		return importWords(ctx, sess, flags.ImportFile)
	default:
		return editRow(ctx, sess, flags.EditIndex, flags.Text, cmd.Flags().Changed("text"))
	}
}

func listRows(ctx context.Context, sess *review.Session) error {
	rows, err := sess.Rows(ctx)
	if err != nil {
		return err
	}

	cfg := sess.Config()
	fmt.Printf("%s: %d rows, showing [%d, %d) sorted by %s\n\n",
		cfg.FilelistPath(), sess.TotalRows(), cfg.Start, cfg.End, cfg.Order)

	color := isTerminal(os.Stdout)
	for _, row := range rows {
		text := annotate.Plain(row.Spans)
		if color {
			text = annotate.ANSI(row.Spans)
		}
		fmt.Printf("%5d  %s\n       %s\n", row.Row.Index, row.Row.AudioPath, text)
		if len(row.Unknown) > 0 {
			fmt.Printf("       unknown: %s\n", strings.Join(row.Unknown, ", "))
		}
	}
	return nil
}

func addWord(ctx context.Context, sess *review.Session, word, arpabet string) error {
	if arpabet == "" {
		suggestion, err := sess.SuggestARPAbet(ctx, word)
		if err != nil {
			return fmt.Errorf("no --arpabet given and prediction failed: %w", err)
		}
		fmt.Printf("Predicted pronunciation: %s\n", suggestion)
		arpabet = suggestion
	}

	inserted, err := sess.AddWord(ctx, word, arpabet)
	if err != nil {
		return err
	}
	if inserted {
		fmt.Printf("Added %s %s to %s\n", strings.ToLower(word), arpabet, sess.Config().DictPath)
	} else {
		fmt.Printf("Skipped %s: already in the dictionary\n", word)
	}
	return nil
}

func checkText(ctx context.Context, sess *review.Session, text string) error {
	lookup, err := sess.CheckWord(ctx, text)
	if err != nil {
		return err
	}
	for _, word := range lookup.Known() {
		entries, err := sess.Store().Lookup(ctx, word)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-20s %s\n", e.Grapheme, e.Phonemes)
		}
	}
	for _, word := range lookup.Unknown() {
		suggestion, err := sess.SuggestARPAbet(ctx, word)
		if err != nil {
			fmt.Printf("%-20s unknown\n", word)
			continue
		}
		fmt.Printf("%-20s unknown, suggested: %s\n", word, suggestion)
	}
	return nil
}

func reportClip(ctx context.Context, ref string, err error, play bool) error {
	if err != nil {
		if errors.Is(err, review.ErrNoProvider) {
			return fmt.Errorf("%w: set UBERDUCK_API_KEY and UBERDUCK_API_SECRET or use --tts openai", err)
		}
		return err
	}
	fmt.Printf("Audio: %s\n", ref)
	if play {
		return audio.NewPlayer().Play(ctx, ref)
	}
	return nil
}

func importWords(ctx context.Context, sess *review.Session, path string) error {
	entries, err := batch.ReadWordFile(path)
	if err != nil {
		return err
	}
	result, err := sess.ImportWords(ctx, entries)
	for _, failure := range result.Failed {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", failure)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d words (%d predicted, %d skipped, %d failed)\n",
		result.Added, result.Predicted, result.Skipped, len(result.Failed))
	return nil
}

func editRow(ctx context.Context, sess *review.Session, index int, text string, textSet bool) error {
	if !textSet {
		return fmt.Errorf("--edit requires --text")
	}
	if err := sess.EditTranscription(ctx, index, text); err != nil {
		return err
	}
	fmt.Printf("Row %d saved to %s\n", index, sess.Config().FilelistPath())
	return nil
}

func clearCaches(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		files, size, err := audio.CacheStats(dir)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", dir, err)
		}
		if err := audio.ClearCache(dir); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
		fmt.Printf("Removed %d files (%.1f KB) from %s\n", files, float64(size)/1024, dir)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
