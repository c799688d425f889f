package audio

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func fakeLookPath(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestPlayerCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		available []string
		file      string
		wantBin   string
		wantErr   bool
	}{
		{"macOS", "darwin", nil, "a.wav", "afplay", false},
		{"linux mp3 prefers mpg123", "linux", []string{"aplay", "mpg123"}, "a.mp3", "mpg123", false},
		{"linux wav prefers aplay", "linux", []string{"aplay", "mpg123"}, "a.wav", "aplay", false},
		{"linux wav falls back to ffplay", "linux", []string{"ffplay", "mpg123"}, "a.WAV", "ffplay", false},
		{"linux unknown extension", "linux", []string{"play"}, "a.flac", "play", false},
		{"linux nothing installed", "linux", nil, "a.mp3", "", true},
		{"unsupported platform", "plan9", nil, "a.mp3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{goos: tt.goos, lookPath: fakeLookPath(tt.available...)}
			cmd, err := p.Command(context.Background(), tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := filepath.Base(cmd.Args[0]); got != tt.wantBin {
				t.Errorf("player = %s, want %s", got, tt.wantBin)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != tt.file {
				t.Errorf("file argument = %s, want %s", last, tt.file)
			}
		})
	}
}

func TestPlayerCommandErrorListsCandidates(t *testing.T) {
	p := &Player{goos: "linux", lookPath: fakeLookPath()}
	_, err := p.Command(context.Background(), "a.wav")
	if err == nil || !strings.Contains(err.Error(), "aplay") {
		t.Errorf("Command() error = %v, want list of players", err)
	}
}
