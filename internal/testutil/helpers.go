package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleFilelist is a three-row LJSpeech-style filelist.
const SampleFilelist = `wavs/LJ001-0001.wav|Printing, in the only sense with which we are at present concerned
wavs/LJ001-0002.wav|the the zzyx press
wavs/LJ001-0003.wav|qwopp and zzyx and blorft
`

// SampleDict is a small CMU-style pronunciation dictionary covering the
// known words of SampleFilelist.
const SampleDict = `and AH0 N D
are AA1 R
at AE1 T
concerned K AH0 N S ER1 N D
in IH0 N
only OW1 N L IY0
present P R EH1 Z AH0 N T
press P R EH1 S
printing P R IH1 N T IH0 NG
sense S EH1 N S
the DH AH0
the(2) DH IY0
we W IY1
which W IH1 CH
with W IH1 DH
`

// TestDataset is a dataset root on disk.
type TestDataset struct {
	Root     string
	Filelist string // relative to Root
	DictPath string
}

// FilelistPath returns the absolute path of the filelist.
func (d TestDataset) FilelistPath() string {
	return filepath.Join(d.Root, d.Filelist)
}

// CreateTestDataset writes SampleFilelist, empty wav files and SampleDict
// into a temporary directory.
func CreateTestDataset(t *testing.T) TestDataset {
	t.Helper()

	root := t.TempDir()
	ds := TestDataset{
		Root:     root,
		Filelist: "metadata.csv",
		DictPath: filepath.Join(root, "cmudict.dict"),
	}
	CreateTestFile(t, ds.FilelistPath(), []byte(SampleFilelist))
	CreateTestFile(t, ds.DictPath, []byte(SampleDict))
	for _, line := range strings.Split(strings.TrimSpace(SampleFilelist), "\n") {
		wav, _, _ := strings.Cut(line, "|")
		CreateTestFile(t, filepath.Join(root, wav), []byte("RIFF"))
	}
	return ds
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CountFiles returns the number of regular files in dir, or 0 if dir does
// not exist.
func CountFiles(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}

// NewTestLogger returns a debug-level text logger writing into a buffer.
func NewTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// CaptureOutput captures stdout/stderr during test execution
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	// Save current stdout/stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	// Create pipes
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	// Redirect stdout/stderr
	os.Stdout = wOut
	os.Stderr = wErr

	// Drain both pipes while f runs so large outputs do not block
	outCh := make(chan string)
	errCh := make(chan string)
	go func() { b, _ := io.ReadAll(rOut); outCh <- string(b) }()
	go func() { b, _ := io.ReadAll(rErr); errCh <- string(b) }()

	defer func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	}()
	f()

	// Close writers
	wOut.Close()
	wErr.Close()

	return <-outCh, <-errCh
}
