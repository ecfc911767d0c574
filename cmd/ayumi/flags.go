package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aleister1102/ayumi/internal/config"
)

// headerFlags collects repeated -H values
type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerFlags) Set(value string) error {
	*h = append(*h, value)
	return nil
}

type AppFlags struct {
	Actions          string
	Input            string
	Output           string
	Headers          []string
	Cookie           string
	Wordlist         string
	BlindURL         string
	DeepDOMXSS       bool
	PatternFile      string
	Workers          int
	TimeoutSecs      int
	GlobalConfigFile string
	Richer           bool
	NoColor          bool
}

func ParseFlags() AppFlags {
	actions := flag.String("action", "", "Comma-separated actions: "+strings.Join(config.KnownActions, ", "))

	input := flag.String("input", "", "File with one target per line, or a single literal target")
	inputAlias := flag.String("i", "", "Alias for -input")

	output := flag.String("output", "", "JSON-lines result file (appended to)")
	outputAlias := flag.String("o", "", "Alias for -output")

	var headers headerFlags
	flag.Var(&headers, "H", `Request header "Key: Value" (repeatable)`)
	cookie := flag.String("cookie", "", `Cookies sent with every request, "a=b; c=d"`)

	wordlist := flag.String("wordlist", "", "Parameter wordlist for the params action")
	blind := flag.String("blind", "", "Blind XSS callback URL")
	deepDOMXSS := flag.Bool("deep-domxss", false, "Enable deep DOM XSS testing")
	patterns := flag.String("patterns", "", "Regex file for the links/secrets actions, one expression per line")
	workers := flag.Int("workers", 0, "Worker pool size for native scans and content extraction")
	timeout := flag.Int("timeout", 0, "Per-request timeout in seconds for native scans and content extraction")

	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for -config")

	richer := flag.Bool("rich", false, "Keep the target with the most query parameters among duplicates")
	noColor := flag.Bool("no-color", false, "Disable colours in the run summary")

	flag.Parse()

	flags := AppFlags{
		Actions:     *actions,
		Headers:     headers,
		Cookie:      *cookie,
		Wordlist:    *wordlist,
		BlindURL:    *blind,
		DeepDOMXSS:  *deepDOMXSS,
		PatternFile: *patterns,
		Workers:     *workers,
		TimeoutSecs: *timeout,
		Richer:      *richer,
		NoColor:     *noColor,
	}

	if *input != "" {
		flags.Input = *input
	} else {
		flags.Input = *inputAlias
	}

	if *output != "" {
		flags.Output = *output
	} else {
		flags.Output = *outputAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if flags.Actions == "" || flags.Input == "" {
		fmt.Fprintln(os.Stderr, "[FATAL] -action and -input are required")
		flag.Usage()
		os.Exit(2)
	}

	return flags
}

// apply overlays command-line values on the loaded configuration
func (f AppFlags) apply(cfg *config.GlobalConfig) {
	if len(f.Headers) > 0 {
		cfg.RequestConfig.Headers = append(cfg.RequestConfig.Headers, f.Headers...)
	}
	if f.Cookie != "" {
		cfg.RequestConfig.Cookies = f.Cookie
	}
	if f.Wordlist != "" {
		cfg.ParamConfig.Wordlist = f.Wordlist
	}
	if f.BlindURL != "" {
		cfg.XSSConfig.BlindURL = f.BlindURL
	}
	if f.DeepDOMXSS {
		cfg.XSSConfig.DeepDOMXSS = true
	}
	if f.PatternFile != "" {
		cfg.ExtractorConfig.PatternFile = f.PatternFile
	}
	if f.Workers > 0 {
		cfg.ExtractorConfig.Workers = f.Workers
		cfg.ScannerConfig.Workers = f.Workers
	}
	if f.TimeoutSecs > 0 {
		cfg.ExtractorConfig.TimeoutSecs = f.TimeoutSecs
		cfg.ScannerConfig.TimeoutSecs = f.TimeoutSecs
	}
	if f.NoColor {
		cfg.OutputConfig.NoColor = true
	}
}
