package config

// StorageConfig configures run history and the findings archive
type StorageConfig struct {
	EnableHistory    bool   `json:"enable_history" yaml:"enable_history"`
	HistoryDBPath    string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty" validate:"required_if=EnableHistory true"`
	EnableArchive    bool   `json:"enable_archive" yaml:"enable_archive"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty" validate:"required_if=EnableArchive true"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		EnableHistory:    false,
		HistoryDBPath:    DefaultStorageHistoryDBPath,
		EnableArchive:    false,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		CompressionCodec: DefaultStorageCompressionCodec,
	}
}

// OutputConfig controls result placement and operator summary
type OutputConfig struct {
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty"`
	NoColor   bool   `json:"no_color" yaml:"no_color"`
}

// NewDefaultOutputConfig creates default output configuration
func NewDefaultOutputConfig() OutputConfig {
	return OutputConfig{Directory: DefaultOutputDir}
}

// MetricsConfig enables the Prometheus textfile export
type MetricsConfig struct {
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{}
}
