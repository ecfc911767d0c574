package config

import "time"

// ProbeConfig controls how external tools are located and bounded
type ProbeConfig struct {
	ToolDirs       []string `json:"tool_dirs,omitempty" yaml:"tool_dirs,omitempty"`
	TimeoutMinutes int      `json:"timeout_minutes,omitempty" yaml:"timeout_minutes,omitempty" validate:"min=1"`
	// WarnOnNonZeroExit surfaces a warning when a probe exits non-zero even if
	// its output parsed cleanly.
	WarnOnNonZeroExit bool `json:"warn_on_non_zero_exit" yaml:"warn_on_non_zero_exit"`
}

// Timeout returns the hard wall-clock limit for a single probe run
func (pc ProbeConfig) Timeout() time.Duration {
	return time.Duration(pc.TimeoutMinutes) * time.Minute
}

// NewDefaultProbeConfig creates default probe configuration
func NewDefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		ToolDirs:          []string{DefaultGoBinDir},
		TimeoutMinutes:    DefaultProbeTimeoutMinutes,
		WarnOnNonZeroExit: true,
	}
}

// XSSConfig holds dalfox tuning
type XSSConfig struct {
	Workers    int    `json:"workers,omitempty" yaml:"workers,omitempty" validate:"min=1"`
	DelayMS    int    `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty" validate:"min=0"`
	OnlyPOC    string `json:"only_poc,omitempty" yaml:"only_poc,omitempty"`
	BlindURL   string `json:"blind_url,omitempty" yaml:"blind_url,omitempty" validate:"omitempty,url"`
	DeepDOMXSS bool   `json:"deep_domxss" yaml:"deep_domxss"`
}

// NewDefaultXSSConfig creates default XSS configuration
func NewDefaultXSSConfig() XSSConfig {
	return XSSConfig{
		Workers: DefaultXSSWorkers,
		DelayMS: DefaultXSSDelayMS,
		OnlyPOC: DefaultXSSOnlyPOC,
	}
}

// ParamConfig holds x8 tuning and wordlist resolution
type ParamConfig struct {
	Wordlist            string   `json:"wordlist,omitempty" yaml:"wordlist,omitempty" validate:"omitempty,fileexists"`
	WordlistSearchPaths []string `json:"wordlist_search_paths,omitempty" yaml:"wordlist_search_paths,omitempty"`
	Concurrency         int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"min=1"`
	DelayMS             int      `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty" validate:"min=0"`
	EnrichedURLsFile    string   `json:"enriched_urls_file,omitempty" yaml:"enriched_urls_file,omitempty"`
}

// NewDefaultParamConfig creates default parameter discovery configuration
func NewDefaultParamConfig() ParamConfig {
	return ParamConfig{
		WordlistSearchPaths: append([]string(nil), DefaultWordlistSearchPaths...),
		Concurrency:         DefaultParamConcurrency,
		DelayMS:             DefaultParamDelayMS,
		EnrichedURLsFile:    DefaultEnrichedURLsFile,
	}
}

// NucleiConfig holds nuclei template locations for the nuclei and takeover actions
type NucleiConfig struct {
	TemplatesDir         string `json:"templates_dir,omitempty" yaml:"templates_dir,omitempty"`
	Severities           string `json:"severities,omitempty" yaml:"severities,omitempty"`
	TakeoverTemplatesDir string `json:"takeover_templates_dir,omitempty" yaml:"takeover_templates_dir,omitempty"`
	TakeoverSeverities   string `json:"takeover_severities,omitempty" yaml:"takeover_severities,omitempty"`
}

// NewDefaultNucleiConfig creates default nuclei configuration
func NewDefaultNucleiConfig() NucleiConfig {
	return NucleiConfig{
		TemplatesDir:         DefaultNucleiTemplatesDir,
		TakeoverTemplatesDir: DefaultTakeoverTemplatesDir,
		TakeoverSeverities:   DefaultTakeoverSeverities,
	}
}
