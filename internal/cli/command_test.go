package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	t.Cleanup(viper.Reset)
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "dsreview" {
		t.Errorf("Expected Use to be 'dsreview', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "transcription") {
		t.Errorf("Expected Short description to mention transcriptions, got %q", cmd.Short)
	}

	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("Expected positional arguments to be rejected")
	}

	// Test that flags are set up
	flagTests := []string{
		"config", "log-level", "log-format",
		"dataset", "filelist", "delimiter", "start", "end", "sort", "no-backup",
		"dict", "dedup", "predictor",
		"tts", "voice", "fallback", "max-polls", "poll-interval",
		"openai-model", "openai-voice", "download-dir", "play",
		"list-models", "clear-cache", "list", "add", "arpabet", "check", "preview", "say", "import", "edit", "text",
	}

	for _, name := range flagTests {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			switch name {
			case "config", "log-level", "log-format":
				flag = cmd.PersistentFlags().Lookup(name)
			default:
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	defaults := map[string]string{
		"dataset":       ".",
		"filelist":      "list-copy.txt",
		"delimiter":     "|",
		"start":         "0",
		"end":           "15",
		"sort":          "index",
		"voice":         "lj",
		"max-polls":     "60",
		"poll-interval": "1s",
		"edit":          "-1",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Expected default %s to be %s, got %s", name, want, flag.DefValue)
		}
	}

	if cmd.Flags().ShorthandLookup("d") == nil || cmd.Flags().ShorthandLookup("l") == nil {
		t.Error("Expected -d and -l shorthands")
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("dataset", "/data/LJSpeech")
	cmd.Flags().Set("sort", "unknown_words")
	cmd.Flags().Set("end", "40")
	cmd.Flags().Set("poll-interval", "250ms")
	cmd.Flags().Set("no-backup", "true")

	bindFlagsToViper(cmd)

	// Test that values are bound
	if got := viper.GetString("dataset.root"); got != "/data/LJSpeech" {
		t.Errorf("Expected dataset.root to be /data/LJSpeech, got %s", got)
	}
	if got := viper.GetString("review.sort"); got != "unknown_words" {
		t.Errorf("Expected review.sort to be unknown_words, got %s", got)
	}
	if got := viper.GetInt("review.end"); got != 40 {
		t.Errorf("Expected review.end to be 40, got %d", got)
	}
	if got := viper.GetDuration("tts.poll_interval"); got != 250*time.Millisecond {
		t.Errorf("Expected tts.poll_interval to be 250ms, got %s", got)
	}
	if !viper.GetBool("review.no_backup") {
		t.Error("Expected review.no_backup to be true")
	}
	// Unset flags fall through to their defaults.
	if got := viper.GetString("tts.voice"); got != "lj" {
		t.Errorf("Expected tts.voice to be lj, got %s", got)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantVoice string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `tts:
  provider: uberduck
  voice: glados
dataset:
  root: /test/dataset`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			wantVoice: "glados",
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				t.Setenv("HOME", t.TempDir())
				return ""
			},
			wantVoice: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()
			t.Cleanup(viper.Reset)

			InitConfig(tt.setupFunc(t))

			if got := viper.GetString("tts.voice"); got != tt.wantVoice {
				t.Errorf("tts.voice = %q, want %q", got, tt.wantVoice)
			}

			// Test environment variable prefix and key replacer
			t.Setenv("DSREVIEW_REVIEW_SORT", "unknown_words")
			if viper.GetString("review.sort") != "unknown_words" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}
