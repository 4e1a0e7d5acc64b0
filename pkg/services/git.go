package services

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LastModified returns the last commit time of path, falling back to the file's
// modification time when git history is unavailable.
func LastModified(path string) (time.Time, error) {
	cmd := exec.Command("git", "log", "-1", "--format=%cI", "--", filepath.Base(path))
	cmd.Dir = filepath.Dir(path)
	if out, err := cmd.Output(); err == nil {
		if ts := strings.TrimSpace(string(out)); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				return t, nil
			}
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
