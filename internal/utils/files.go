package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// MoveFiles renames each file in srcs into dir, keeping base names, and
// returns the new paths. Either every file is moved or none is: files that
// already exist in dir are set aside and put back if a later move fails.
func MoveFiles(srcs []string, dir string) ([]string, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	dsts := make([]string, len(srcs))
	seen := make(map[string]bool, len(srcs))
	for i, src := range srcs {
		dst := filepath.Join(dir, filepath.Base(src))
		if seen[dst] {
			return nil, fmt.Errorf("move: more than one file named %s", filepath.Base(src))
		}
		seen[dst] = true
		dsts[i] = dst
	}

	var moved []string
	backups := map[string]string{}
	rollback := func() {
		for _, p := range moved {
			_ = os.Remove(p)
		}
		for dst, bak := range backups {
			_ = os.Rename(bak, dst)
		}
	}
	for i, src := range srcs {
		dst := dsts[i]
		if _, err := os.Lstat(dst); err == nil {
			bak := dst + ".bak"
			if err := os.Rename(dst, bak); err != nil {
				rollback()
				return nil, fmt.Errorf("set aside %s: %w", filepath.Base(dst), err)
			}
			backups[dst] = bak
		}
		if err := os.Rename(src, dst); err != nil {
			rollback()
			return nil, fmt.Errorf("move %s: %w", filepath.Base(src), err)
		}
		moved = append(moved, dst)
	}
	for _, bak := range backups {
		_ = os.Remove(bak)
	}
	return moved, nil
}
