package filemanager

import (
	"bufio"
	"fmt"
	"os"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileWriter handles file writing operations
type FileWriter struct {
	logger zerolog.Logger
}

// NewFileWriter creates a new FileWriter instance
func NewFileWriter(logger zerolog.Logger) *FileWriter {
	return &FileWriter{
		logger: logger.With().Str("component", "FileWriter").Logger(),
	}
}

// WriteLines truncates path and writes each entry followed by a newline
func (fw *FileWriter) WriteLines(path string, lines []string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to open file: %s", path))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fw.logger.Error().Err(closeErr).Str("path", path).Msg("Failed to close file after writing")
		}
	}()

	buf := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := buf.WriteString(line + "\n"); err != nil {
			return errorwrapper.WrapError(err, fmt.Sprintf("failed to write file: %s", path))
		}
	}
	if err := buf.Flush(); err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to flush file: %s", path))
	}

	fw.logger.Debug().Str("path", path).Int("lines", len(lines)).Msg("File written successfully")
	return nil
}
