package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"codeberg.org/snonux/dsreview/internal/audio"
	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/dictionary"
	"codeberg.org/snonux/dsreview/internal/phonetic"
	"codeberg.org/snonux/dsreview/internal/review"
)

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("tts.openai_key")
}

// GetUberduckKey retrieves the Uberduck API key from environment or config
func GetUberduckKey() string {
	if key := os.Getenv("UBERDUCK_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("tts.uberduck_key")
}

// GetUberduckSecret retrieves the Uberduck API secret from environment or config
func GetUberduckSecret() string {
	if secret := os.Getenv("UBERDUCK_API_SECRET"); secret != "" {
		return secret
	}
	return viper.GetString("tts.uberduck_secret")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ReviewConfig builds the review configuration from flags, config file and
// environment, in that order of precedence.
func ReviewConfig() (review.Config, error) {
	root := ExpandHome(viper.GetString("dataset.root"))

	delimiter, err := dataset.ParseDelimiter(viper.GetString("dataset.delimiter"))
	if err != nil {
		return review.Config{}, err
	}
	order, err := dataset.ParseSortOrder(viper.GetString("review.sort"))
	if err != nil {
		return review.Config{}, err
	}
	policy, err := dictionary.ParseDedupPolicy(viper.GetString("dictionary.dedup"))
	if err != nil {
		return review.Config{}, err
	}

	start, end := viper.GetInt("review.start"), viper.GetInt("review.end")
	if start < 0 || end < start {
		return review.Config{}, fmt.Errorf("invalid row range [%d, %d)", start, end)
	}

	dictPath := ExpandHome(viper.GetString("dictionary.path"))
	if dictPath == "" {
		dictPath = filepath.Join(root, "cmudict.dict")
	}

	downloadDir := ExpandHome(viper.GetString("tts.download_dir"))
	if downloadDir == "" {
		if cache, err := os.UserCacheDir(); err == nil {
			downloadDir = filepath.Join(cache, "dsreview", "previews")
		} else {
			downloadDir = filepath.Join(os.TempDir(), "dsreview-previews")
		}
	}

	return review.Config{
		DatasetRoot: root,
		Filelist:    ExpandHome(viper.GetString("dataset.filelist")),
		Delimiter:   delimiter,
		Start:       start,
		End:         end,
		Order:       order,
		DictPath:    dictPath,
		Policy:      policy,
		Voice:       viper.GetString("tts.voice"),
		Backup:      !viper.GetBool("review.no_backup"),
		DownloadDir: downloadDir,
	}, nil
}

// AudioConfig builds the TTS provider configuration.
func AudioConfig(logger *slog.Logger) *audio.Config {
	cfg := audio.DefaultProviderConfig()
	cfg.Provider = viper.GetString("tts.provider")
	if url := viper.GetString("tts.base_url"); url != "" {
		cfg.BaseURL = url
	}
	cfg.Key = GetUberduckKey()
	cfg.Secret = GetUberduckSecret()
	if voice := viper.GetString("tts.voice"); voice != "" {
		cfg.Voice = voice
	}
	if n := viper.GetInt("tts.max_polls"); n > 0 {
		cfg.MaxPolls = n
	}
	if d := viper.GetDuration("tts.poll_interval"); d > 0 {
		cfg.PollInterval = d
	}
	cfg.OpenAIKey = GetOpenAIKey()
	if model := viper.GetString("tts.openai_model"); model != "" {
		cfg.OpenAIModel = model
	}
	if voice := viper.GetString("tts.openai_voice"); voice != "" {
		cfg.OpenAIVoice = voice
	}
	if cache, err := os.UserCacheDir(); err == nil {
		cfg.CacheDir = filepath.Join(cache, "dsreview", "tts")
	}
	cfg.Logger = logger
	return cfg
}

// NewProvider creates the configured TTS provider, wrapped with the OpenAI
// fallback when requested and possible.
func NewProvider(cfg *audio.Config, fallback bool) (audio.Provider, error) {
	primary, err := audio.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if !fallback || cfg.Provider == "openai" || cfg.OpenAIKey == "" {
		return primary, nil
	}

	openaiCfg := *cfg
	openaiCfg.Provider = "openai"
	secondary, err := audio.NewProvider(&openaiCfg)
	if err != nil {
		return nil, err
	}
	return audio.NewProviderWithFallback(primary, secondary, cfg.Logger), nil
}

// NewPredictor creates the configured pronunciation predictor. The OpenAI
// predictor falls back to the rules when the API is unavailable.
func NewPredictor(dict phonetic.Dictionary, logger *slog.Logger) (phonetic.Predictor, error) {
	rules := phonetic.NewRulePredictor(dict)
	switch name := viper.GetString("dictionary.predictor"); name {
	case "", "rules":
		return rules, nil
	case "openai":
		key := GetOpenAIKey()
		if key == "" {
			logger.Warn("OPENAI_API_KEY not set, using rule-based predictions")
			return rules, nil
		}
		return phonetic.NewOpenAIPredictor(key, rules, logger), nil
	default:
		return nil, fmt.Errorf("unknown predictor: %s", name)
	}
}
