package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/aleister1102/ayumi/internal/urlhandler"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const findingsDir = "findings"

// FindingsArchive writes classified findings to Parquet, one file per run and action
type FindingsArchive struct {
	config      config.StorageConfig
	logger      zerolog.Logger
	fileManager *filemanager.FileManager
}

// NewFindingsArchive creates a FindingsArchive rooted at cfg.ParquetBasePath
func NewFindingsArchive(cfg config.StorageConfig, logger zerolog.Logger) (*FindingsArchive, error) {
	if cfg.ParquetBasePath == "" {
		return nil, errorwrapper.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured")
	}
	l := logger.With().Str("component", "FindingsArchive").Logger()
	return &FindingsArchive{
		config:      cfg,
		logger:      l,
		fileManager: filemanager.NewFileManager(l),
	}, nil
}

// Store writes findings for one action of one run and returns the file path.
// Nothing is written for an empty slice.
func (fa *FindingsArchive) Store(ctx context.Context, runID, action string, scanTime time.Time, findings []models.Finding) (string, error) {
	if len(findings) == 0 {
		return "", nil
	}
	if runID == "" {
		return "", errorwrapper.NewValidationError("run_id", runID, "run ID cannot be empty")
	}

	dir := filepath.Join(fa.config.ParquetBasePath, findingsDir)
	if err := fa.fileManager.EnsureDirectory(dir, 0755); err != nil {
		return "", errorwrapper.WrapError(err, "failed to create findings archive directory: "+dir)
	}
	filePath := filepath.Join(dir, archiveFileName(runID, action))

	rows := make([]models.ParquetFinding, 0, len(findings))
	millis := scanTime.UnixMilli()
	for _, f := range findings {
		if err := ctx.Err(); err != nil {
			return "", errorwrapper.WrapError(err, "findings archive cancelled")
		}
		rows = append(rows, f.ToParquet(runID, action, millis))
	}

	if err := fa.writeFile(filePath, rows); err != nil {
		return "", err
	}
	fa.logger.Info().Str("file_path", filePath).Int("records_written", len(rows)).Msg("Archived findings")
	return filePath, nil
}

func (fa *FindingsArchive) writeFile(filePath string, rows []models.ParquetFinding) error {
	tmp := filePath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create parquet file: "+tmp)
	}

	writer := parquet.NewGenericWriter[models.ParquetFinding](file, fa.compressionOption())
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		_ = file.Close()
		_ = os.Remove(tmp)
		return errorwrapper.WrapError(err, "failed to write findings to parquet file")
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return errorwrapper.WrapError(err, "failed to finalize parquet file")
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return errorwrapper.WrapError(err, "failed to close parquet file")
	}
	return os.Rename(tmp, filePath)
}

func (fa *FindingsArchive) compressionOption() parquet.WriterOption {
	switch strings.ToLower(fa.config.CompressionCodec) {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

// Load reads every archived row of runID. An empty runID loads all runs.
func (fa *FindingsArchive) Load(ctx context.Context, runID string) ([]models.ParquetFinding, error) {
	dir := filepath.Join(fa.config.ParquetBasePath, findingsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fa.logger.Debug().Str("dir", dir).Msg("Findings archive does not exist, returning empty list")
			return []models.ParquetFinding{}, nil
		}
		return nil, errorwrapper.WrapError(err, "failed to list findings archive")
	}

	var names []string
	prefix := ""
	if runID != "" {
		prefix = urlhandler.SanitizeFilename(runID) + "_"
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") || !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]models.ParquetFinding, 0)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errorwrapper.WrapError(err, "findings archive load cancelled")
		}
		fileRows, err := readParquetFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}

	fa.logger.Debug().Int("records_read", len(rows)).Int("files", len(names)).Msg("Loaded archived findings")
	return rows, nil
}

func readParquetFile(filePath string) ([]models.ParquetFinding, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open parquet file: "+filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[models.ParquetFinding](file)
	defer reader.Close()

	rows := make([]models.ParquetFinding, 0, reader.NumRows())
	for {
		// fresh batch each round, the reader may reuse slice fields of its destination
		batch := make([]models.ParquetFinding, 100)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errorwrapper.WrapError(err, "failed to read parquet file: "+filePath)
		}
	}
	return rows, nil
}

func archiveFileName(runID, action string) string {
	name := urlhandler.SanitizeFilename(runID)
	if action != "" {
		name += "_" + urlhandler.SanitizeFilename(action)
	}
	return name + ".parquet"
}
