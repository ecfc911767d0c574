package probe

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aleister1102/ayumi/internal/config"
)

// LookPath finds tool in $PATH, then in each of extraDirs ("~" expanded).
// Go-installed tools often live in ~/go/bin, which is missing from PATH in
// non-interactive shells.
func LookPath(tool string, extraDirs []string) (string, error) {
	if strings.ContainsRune(tool, os.PathSeparator) {
		if isExecutable(tool) {
			return tool, nil
		}
		return "", &exec.Error{Name: tool, Err: exec.ErrNotFound}
	}

	if path, err := exec.LookPath(tool); err == nil {
		return path, nil
	}

	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(config.ExpandHome(dir), tool)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", &exec.Error{Name: tool, Err: exec.ErrNotFound}
}

// Available reports whether LookPath would succeed
func Available(tool string, extraDirs []string) bool {
	_, err := LookPath(tool, extraDirs)
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
