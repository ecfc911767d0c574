package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application.
// It is built once at startup and passed explicitly; components never read
// configuration from ambient state.
type GlobalConfig struct {
	APIKeys         map[string]string `json:"api_keys,omitempty" yaml:"api_keys,omitempty"`
	ExtractorConfig ExtractorConfig   `json:"extractor_config,omitempty" yaml:"extractor_config,omitempty"`
	LogConfig       LogConfig         `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MetricsConfig   MetricsConfig     `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	NucleiConfig    NucleiConfig      `json:"nuclei_config,omitempty" yaml:"nuclei_config,omitempty"`
	OutputConfig    OutputConfig      `json:"output_config,omitempty" yaml:"output_config,omitempty"`
	ParamConfig     ParamConfig       `json:"param_config,omitempty" yaml:"param_config,omitempty"`
	ProbeConfig     ProbeConfig       `json:"probe_config,omitempty" yaml:"probe_config,omitempty"`
	RequestConfig   RequestConfig     `json:"request_config,omitempty" yaml:"request_config,omitempty"`
	ScannerConfig   ScannerConfig     `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	StorageConfig   StorageConfig     `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	XSSConfig       XSSConfig         `json:"xss_config,omitempty" yaml:"xss_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		APIKeys:         map[string]string{},
		ExtractorConfig: NewDefaultExtractorConfig(),
		LogConfig:       NewDefaultLogConfig(),
		MetricsConfig:   NewDefaultMetricsConfig(),
		NucleiConfig:    NewDefaultNucleiConfig(),
		OutputConfig:    NewDefaultOutputConfig(),
		ParamConfig:     NewDefaultParamConfig(),
		ProbeConfig:     NewDefaultProbeConfig(),
		RequestConfig:   NewDefaultRequestConfig(),
		ScannerConfig:   NewDefaultScannerConfig(),
		StorageConfig:   NewDefaultStorageConfig(),
		XSSConfig:       NewDefaultXSSConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	fileManager := filemanager.NewFileManager(logger)
	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *filemanager.FileManager, filePath string) ([]byte, error) {
	opts := filemanager.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024 // 10MB max config file size

	return fileManager.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
