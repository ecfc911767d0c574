package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
)

// ErrWordlistNotFound is returned when no parameter wordlist can be located
var ErrWordlistNotFound = errorwrapper.NewError("no parameter wordlist found")

// ResolveWordlist locates the parameter wordlist for x8.
// Priority: explicit path, then the PARAM_WORDLIST variable, then the first
// existing entry of the search paths (globs allowed, "~" expanded).
func (pc ParamConfig) ResolveWordlist() (string, error) {
	if pc.Wordlist != "" && fileExists(ExpandHome(pc.Wordlist)) {
		return ExpandHome(pc.Wordlist), nil
	}

	if envPath := os.Getenv(ParamWordlistEnv); envPath != "" && fileExists(envPath) {
		return envPath, nil
	}

	for _, candidate := range pc.WordlistSearchPaths {
		candidate = ExpandHome(candidate)
		if strings.ContainsAny(candidate, "*?[") {
			matches, err := filepath.Glob(candidate)
			if err != nil {
				continue
			}
			for _, m := range matches {
				if fileExists(m) {
					return m, nil
				}
			}
			continue
		}
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrWordlistNotFound
}

// ExpandHome replaces a leading "~" with the current user's home directory
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
