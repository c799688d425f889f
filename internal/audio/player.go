package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// playerCandidate is an external command able to play a file.
type playerCandidate struct {
	name string
	args []string
}

// Linux players in order of preference per file type. mpg123 handles MP3
// best but cannot play WAV; aplay is the reverse.
var linuxPlayers = map[string][]playerCandidate{
	".mp3": {
		{"mpg123", []string{"-q"}},
		{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
		{"play", []string{"-q"}},
	},
	".wav": {
		{"aplay", []string{"-q"}},
		{"paplay", nil},
		{"play", []string{"-q"}},
		{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	},
	"": {
		{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
		{"play", []string{"-q"}},
		{"paplay", nil},
	},
}

// Player starts local audio playback with a platform-specific command.
type Player struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewPlayer creates a player for the running platform.
func NewPlayer() *Player {
	return &Player{goos: runtime.GOOS, lookPath: exec.LookPath}
}

// Command returns the command that plays file. The caller starts it and may
// kill it to stop playback.
func (p *Player) Command(ctx context.Context, file string) (*exec.Cmd, error) {
	switch p.goos {
	case "darwin":
		return exec.CommandContext(ctx, "afplay", file), nil
	case "windows":
		return exec.CommandContext(ctx, "cmd", "/c", "start", "/min", file), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		candidates, ok := linuxPlayers[strings.ToLower(filepath.Ext(file))]
		if !ok {
			candidates = linuxPlayers[""]
		}
		var names []string
		for _, c := range candidates {
			if _, err := p.lookPath(c.name); err == nil {
				return exec.CommandContext(ctx, c.name, append(append([]string(nil), c.args...), file)...), nil
			}
			names = append(names, c.name)
		}
		return nil, fmt.Errorf("no audio player found. Install one of: %s", strings.Join(names, ", "))
	default:
		return nil, fmt.Errorf("unsupported platform: %s", p.goos)
	}
}

// Play plays file and blocks until playback ends or ctx is cancelled.
func (p *Player) Play(ctx context.Context, file string) error {
	cmd, err := p.Command(ctx, file)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", filepath.Base(cmd.Path), err)
	}
	return nil
}
