package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	LogLevel  string
	LogFormat string

	// Dataset flags
	DatasetRoot string
	Filelist    string
	Delimiter   string
	Start       int
	End         int
	SortOrder   string
	NoBackup    bool

	// Dictionary flags
	DictPath  string
	Dedup     string
	Predictor string

	// TTS flags
	Provider     string
	Voice        string
	Fallback     bool
	MaxPolls     int
	PollInterval time.Duration
	OpenAIModel  string
	OpenAIVoice  string
	DownloadDir  string
	Play         bool

	// Modes; none set launches the GUI
	ListModels bool
	ClearCache bool
	List       bool
	AddWord    string
	ARPAbet    string
	Check      string
	Preview    string
	Say        string
	ImportFile string
	EditIndex  int
	Text       string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:     "info",
		LogFormat:    "text",
		DatasetRoot:  ".",
		Filelist:     "list-copy.txt",
		Delimiter:    "|",
		End:          15,
		SortOrder:    "index",
		Dedup:        "session",
		Predictor:    "rules",
		Provider:     "uberduck",
		Voice:        "lj",
		MaxPolls:     60,
		PollInterval: time.Second,
		OpenAIModel:  "tts-1",
		OpenAIVoice:  "alloy",
		EditIndex:    -1,
	}
}

// GUIMode reports whether no terminal mode was requested.
func (f *Flags) GUIMode() bool {
	return !f.ListModels && !f.ClearCache && !f.List && f.AddWord == "" && f.Check == "" && f.Preview == "" &&
		f.Say == "" && f.ImportFile == "" && f.EditIndex < 0
}
