package config

import "time"

// ExtractorConfig defines configuration for the concurrent content extractor
type ExtractorConfig struct {
	Workers          int      `json:"workers,omitempty" yaml:"workers,omitempty" validate:"min=1,max=100"`
	TimeoutSecs      int      `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	PatternFile      string   `json:"pattern_file,omitempty" yaml:"pattern_file,omitempty" validate:"omitempty,fileexists"`
	CustomRegexes    []string `json:"custom_regexes,omitempty" yaml:"custom_regexes,omitempty"`
	RequestsPerSec   float64  `json:"requests_per_sec,omitempty" yaml:"requests_per_sec,omitempty" validate:"min=0"`
	MaxContentSizeMB int      `json:"max_content_size_mb,omitempty" yaml:"max_content_size_mb,omitempty" validate:"min=0"`
	EnableHTTP2      bool     `json:"enable_http2" yaml:"enable_http2"`
}

// Timeout returns the per-request fetch timeout
func (ec ExtractorConfig) Timeout() time.Duration {
	return time.Duration(ec.TimeoutSecs) * time.Second
}

// NewDefaultExtractorConfig creates default extractor configuration
func NewDefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Workers:          DefaultExtractorWorkers,
		TimeoutSecs:      DefaultExtractorTimeoutSecs,
		CustomRegexes:    []string{},
		MaxContentSizeMB: DefaultExtractorMaxContentSizeMB,
		EnableHTTP2:      true,
	}
}

// ScannerConfig bounds the native HTTP method and CORS scanners
type ScannerConfig struct {
	Workers     int `json:"workers,omitempty" yaml:"workers,omitempty" validate:"min=1,max=100"`
	TimeoutSecs int `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
}

// Timeout returns the per-request timeout
func (sc ScannerConfig) Timeout() time.Duration {
	return time.Duration(sc.TimeoutSecs) * time.Second
}

// NewDefaultScannerConfig creates default native scanner configuration
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Workers:     DefaultScannerWorkers,
		TimeoutSecs: DefaultScannerTimeoutSecs,
	}
}
