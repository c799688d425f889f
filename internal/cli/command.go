package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/dsreview/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dsreview",
		Short: "TTS dataset transcription reviewer",
		Long: `dsreview helps review the transcriptions of a speech dataset.

Each row of the filelist is shown next to its audio with words missing
from the pronunciation dictionary and immediately repeated words
highlighted. Transcriptions can be corrected in place, new words added
to the ARPAbet dictionary and pronunciations previewed through a TTS
service.

Examples:
  dsreview --dataset ~/LJSpeech                 # Launch the review GUI (default)
  dsreview --dataset ~/LJSpeech --list          # Print annotated rows
  dsreview --add uberduck --arpabet "UW1 B ER0 D AH2 K"
  dsreview --preview "HH AH0 L OW1" --play      # Listen to a pronunciation
  dsreview --import words.txt                   # Bulk add words`,
		Args:         cobra.NoArgs,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.dsreview.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Dataset flags
	cmd.Flags().StringVarP(&flags.DatasetRoot, "dataset", "d", flags.DatasetRoot, "Path to the filelist and audio files")
	cmd.Flags().StringVarP(&flags.Filelist, "filelist", "l", flags.Filelist, "Filelist name relative to the dataset path (edits overwrite it)")
	cmd.Flags().StringVar(&flags.Delimiter, "delimiter", flags.Delimiter, "Column delimiter of the filelist")
	cmd.Flags().IntVar(&flags.Start, "start", flags.Start, "Index of the first row to show")
	cmd.Flags().IntVar(&flags.End, "end", flags.End, "Index after the last row to show")
	cmd.Flags().StringVar(&flags.SortOrder, "sort", flags.SortOrder, "Row order: index or unknown_words")
	cmd.Flags().BoolVar(&flags.NoBackup, "no-backup", false, "Do not archive the filelist and dictionary before the first write")

	// Dictionary flags
	cmd.Flags().StringVar(&flags.DictPath, "dict", "", "ARPAbet dictionary file (default is cmudict.dict in the dataset path)")
	cmd.Flags().StringVar(&flags.Dedup, "dedup", flags.Dedup, "Duplicate check for added words: session, grapheme or pair")
	cmd.Flags().StringVar(&flags.Predictor, "predictor", flags.Predictor, "Pronunciation suggestions: rules or openai")

	// TTS flags
	cmd.Flags().StringVar(&flags.Provider, "tts", flags.Provider, "TTS provider: uberduck or openai")
	cmd.Flags().StringVar(&flags.Voice, "voice", flags.Voice, "Uberduck voice")
	cmd.Flags().BoolVar(&flags.Fallback, "fallback", false, "Fall back to OpenAI TTS when Uberduck fails (plain text only)")
	cmd.Flags().IntVar(&flags.MaxPolls, "max-polls", flags.MaxPolls, "Maximum status polls before a preview times out")
	cmd.Flags().DurationVar(&flags.PollInterval, "poll-interval", flags.PollInterval, "Delay between status polls")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, sage, shimmer")
	cmd.Flags().StringVar(&flags.DownloadDir, "download-dir", "", "Directory for downloaded previews (default is the user cache directory)")
	cmd.Flags().BoolVar(&flags.Play, "play", false, "Play --preview and --say results locally")

	// Modes
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List OpenAI models usable for TTS and predictions")
	cmd.Flags().BoolVar(&flags.ClearCache, "clear-cache", false, "Remove cached TTS clips and downloaded previews")
	cmd.Flags().BoolVar(&flags.List, "list", false, "Print annotated rows instead of launching the GUI")
	cmd.Flags().StringVar(&flags.AddWord, "add", "", "Add a word to the dictionary (use with --arpabet)")
	cmd.Flags().StringVar(&flags.ARPAbet, "arpabet", "", "ARPAbet for --add (default is a predicted pronunciation)")
	cmd.Flags().StringVar(&flags.Check, "check", "", "Show how the words of a text resolve against the dictionary")
	cmd.Flags().StringVar(&flags.Preview, "preview", "", "Synthesize an ARPAbet sequence")
	cmd.Flags().StringVar(&flags.Say, "say", "", "Synthesize plain text")
	cmd.Flags().StringVar(&flags.ImportFile, "import", "", "Add words from a file (\"word = ARPABET\" or \"word\" per line)")
	cmd.Flags().IntVar(&flags.EditIndex, "edit", flags.EditIndex, "Replace the transcription of this row (use with --text)")
	cmd.Flags().StringVar(&flags.Text, "text", "", "New transcription for --edit")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("dataset.root", cmd.Flags().Lookup("dataset"))
	viper.BindPFlag("dataset.filelist", cmd.Flags().Lookup("filelist"))
	viper.BindPFlag("dataset.delimiter", cmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("review.start", cmd.Flags().Lookup("start"))
	viper.BindPFlag("review.end", cmd.Flags().Lookup("end"))
	viper.BindPFlag("review.sort", cmd.Flags().Lookup("sort"))
	viper.BindPFlag("review.no_backup", cmd.Flags().Lookup("no-backup"))
	viper.BindPFlag("dictionary.path", cmd.Flags().Lookup("dict"))
	viper.BindPFlag("dictionary.dedup", cmd.Flags().Lookup("dedup"))
	viper.BindPFlag("dictionary.predictor", cmd.Flags().Lookup("predictor"))
	viper.BindPFlag("tts.provider", cmd.Flags().Lookup("tts"))
	viper.BindPFlag("tts.voice", cmd.Flags().Lookup("voice"))
	viper.BindPFlag("tts.fallback", cmd.Flags().Lookup("fallback"))
	viper.BindPFlag("tts.max_polls", cmd.Flags().Lookup("max-polls"))
	viper.BindPFlag("tts.poll_interval", cmd.Flags().Lookup("poll-interval"))
	viper.BindPFlag("tts.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("tts.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("tts.download_dir", cmd.Flags().Lookup("download-dir"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".dsreview" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dsreview")
	}

	// Environment variables
	viper.SetEnvPrefix("DSREVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
