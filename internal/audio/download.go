package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/dsreview/internal"
)

// maxDownloadBytes caps a downloaded clip; previews are a few seconds long.
const maxDownloadBytes = 20 << 20

// Download fetches an audio reference returned by a provider into dir and
// returns the local path. References that are not http(s) URLs are taken to
// be local files and returned unchanged. A clip already present in dir is
// not fetched again.
func Download(ctx context.Context, client *http.Client, ref, dir string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ref, nil
	}
	if client == nil {
		client = http.DefaultClient
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		ext = ".wav"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	target := filepath.Join(dir, internal.HashKey(ref)+ext)
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		return target, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Op: "download", StatusCode: resp.StatusCode, Body: resp.Status}
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save audio: %w", err)
	}
	if written == 0 {
		return "", fmt.Errorf("download returned no data")
	}
	if written > maxDownloadBytes {
		return "", fmt.Errorf("audio exceeds %d bytes", maxDownloadBytes)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to save audio: %w", err)
	}
	return target, nil
}
