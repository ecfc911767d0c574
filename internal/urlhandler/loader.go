package urlhandler

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// ErrEmptyDescriptor is returned when no input descriptor was given
var ErrEmptyDescriptor = errors.New("input descriptor is empty")

// LoadTargets turns an input descriptor into an ordered list of targets.
// An existing path is read one target per non-blank line, order kept and
// duplicates kept. Anything else is treated as a single literal target and
// given an https:// scheme when it has none.
func LoadTargets(descriptor string, logger zerolog.Logger) ([]string, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, errorwrapper.NewInputError(descriptor, ErrEmptyDescriptor)
	}

	if _, err := os.Stat(descriptor); err == nil {
		return ReadTargetsFromFile(descriptor, logger)
	}

	target := EnsureScheme(descriptor)
	logger.Debug().Str("target", target).Msg("Input is a literal target")
	return []string{target}, nil
}

// ReadTargetsFromFile reads a file line by line and returns the trimmed,
// non-blank lines. Lines are returned untouched otherwise; canonicalisation
// only applies to literal descriptors.
func ReadTargetsFromFile(filePath string, logger zerolog.Logger) ([]string, error) {
	fileLogger := logger.With().Str("file_path", filePath).Logger()

	info, err := os.Stat(filePath)
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error checking input file")
		return nil, errorwrapper.NewInputError(filePath, err)
	}
	if info.IsDir() {
		fileLogger.Error().Msg("Input path is a directory, not a file")
		return nil, errorwrapper.NewInputError(filePath, errors.New("path is a directory"))
	}

	file, err := os.Open(filePath)
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error opening input file")
		return nil, errorwrapper.NewInputError(filePath, err)
	}
	defer file.Close()

	var targets []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	totalLines := 0
	for scanner.Scan() {
		totalLines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		targets = append(targets, line)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		fileLogger.Error().Err(scanErr).Msg("Error during scanning of input file")
		return nil, errorwrapper.NewInputError(filePath, scanErr)
	}

	fileLogger.Info().
		Int("lines_read", totalLines).
		Int("targets", len(targets)).
		Msg("Loaded targets from file")

	return targets, nil
}

// EnsureScheme prefixes bare hosts with https://
func EnsureScheme(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return target
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") || strings.Contains(target, "://") {
		return target
	}
	return "https://" + strings.TrimPrefix(target, "//")
}
