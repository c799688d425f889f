package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// now is replaced in tests.
var now = time.Now

// Backup copies the file at path to <dir>/archive/<name>-YYYYMMDD-HHMMSS,
// where dir and name are the directory and base name of path. It returns
// the path of the copy. The original file is left in place.
func Backup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot back up %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot back up %s: is a directory", path)
	}

	archiveDir := filepath.Join(filepath.Dir(path), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	t := now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", filepath.Base(path), t.Format("20060102-150405")))

	// Check if archive already exists (two backups within one second)
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", filepath.Base(path), t.Format("20060102-150405.000000")))
	}

	if err := copyFile(path, archivePath, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return archivePath, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
