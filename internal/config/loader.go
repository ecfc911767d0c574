package config

import (
	"os"
	"path/filepath"
)

// configFileNames are looked up, in order, in each search directory
var configFileNames = []string{"config.yaml", "config.json"}

// GetConfigPath returns the first existing config file among the -config
// flag value, AYUMI_CONFIG_PATH, and config.yaml/config.json in the working
// directory and then the executable's directory. Empty means none was found.
func GetConfigPath(flagPath string) string {
	for _, candidate := range configCandidates(flagPath) {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func configCandidates(flagPath string) []string {
	var candidates []string
	if flagPath != "" {
		candidates = append(candidates, flagPath)
	}
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		candidates = append(candidates, envPath)
	}

	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if exeDir := filepath.Dir(exe); len(dirs) == 0 || dirs[0] != exeDir {
			dirs = append(dirs, exeDir)
		}
	}
	for _, dir := range dirs {
		for _, name := range configFileNames {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	return candidates
}

// fileExists reports whether path names a regular file
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
