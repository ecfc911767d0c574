package probe

import (
	"strconv"
	"strings"

	"github.com/aleister1102/ayumi/internal/config"
)

// Tool names as found on PATH
const (
	ToolDalfox  = "dalfox"
	ToolX8      = "x8"
	ToolNuclei  = "nuclei"
	ToolCRLFuzz = "crlfuzz"
)

// DalfoxOptions drive a dalfox file-mode scan
type DalfoxOptions struct {
	TargetsFile string
	OutputFile  string
	Workers     int
	DelayMS     int
	OnlyPOC     string
	BlindURL    string
	DeepDOMXSS  bool
	Headers     []string // raw "Key: Value"
	Cookies     string
}

// NewDalfoxOptions fills tuning from cfg and request extras from req
func NewDalfoxOptions(cfg config.XSSConfig, req config.RequestConfig, targetsFile, outputFile string) DalfoxOptions {
	return DalfoxOptions{
		TargetsFile: targetsFile,
		OutputFile:  outputFile,
		Workers:     cfg.Workers,
		DelayMS:     cfg.DelayMS,
		OnlyPOC:     cfg.OnlyPOC,
		BlindURL:    cfg.BlindURL,
		DeepDOMXSS:  cfg.DeepDOMXSS,
		Headers:     req.Headers,
		Cookies:     req.Cookies,
	}
}

// DalfoxArgs builds the dalfox argument list. Output is JSON written to OutputFile.
func DalfoxArgs(o DalfoxOptions) []string {
	workers := o.Workers
	if workers <= 0 {
		workers = config.DefaultXSSWorkers
	}
	onlyPOC := o.OnlyPOC
	if onlyPOC == "" {
		onlyPOC = config.DefaultXSSOnlyPOC
	}

	args := []string{
		"file", o.TargetsFile,
		"--silence",
		"-F",
		"--skip-bav",
		"--skip-mining-dict",
		"--worker", strconv.Itoa(workers),
		"--delay", strconv.Itoa(max(o.DelayMS, 0)),
		"--waf-evasion",
		"--only-poc", onlyPOC,
		"--format", "json",
		"-o", o.OutputFile,
	}

	if o.BlindURL != "" {
		args = append(args, "-b", o.BlindURL)
	}
	if o.DeepDOMXSS {
		args = append(args, "--deep-domxss")
	}
	for _, h := range o.Headers {
		if strings.TrimSpace(h) != "" {
			args = append(args, "-H", h)
		}
	}
	if o.Cookies != "" {
		args = append(args, "-C", o.Cookies)
	}
	return args
}

// X8Options drive an x8 hidden-parameter discovery run
type X8Options struct {
	TargetsFile string
	OutputFile  string
	Wordlist    string
	Concurrency int
	DelayMS     int
	Headers     []string
	Cookies     string
}

// NewX8Options fills tuning from cfg and request extras from req
func NewX8Options(cfg config.ParamConfig, req config.RequestConfig, targetsFile, outputFile, wordlist string) X8Options {
	return X8Options{
		TargetsFile: targetsFile,
		OutputFile:  outputFile,
		Wordlist:    wordlist,
		Concurrency: cfg.Concurrency,
		DelayMS:     cfg.DelayMS,
		Headers:     req.Headers,
		Cookies:     req.Cookies,
	}
}

// X8Args builds the x8 argument list. Output is JSON written to OutputFile.
func X8Args(o X8Options) []string {
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultParamConcurrency
	}

	args := []string{
		"-u", o.TargetsFile,
		"-w", o.Wordlist,
		"-c", strconv.Itoa(concurrency),
		"-L",
		"--verify",
		"-O", "json",
		"-o", o.OutputFile,
		"--remove-empty",
		"-d", strconv.Itoa(max(o.DelayMS, 0)),
	}

	var headers []string
	for _, h := range o.Headers {
		if strings.TrimSpace(h) != "" {
			headers = append(headers, h)
		}
	}
	if len(headers) > 0 {
		args = append(args, "-H")
		args = append(args, headers...)
	}
	if o.Cookies != "" {
		args = append(args, "-H", "Cookie: "+o.Cookies)
	}
	return args
}

// NucleiOptions drive a nuclei template run against one target or a list
type NucleiOptions struct {
	Target       string
	TargetsFile  string
	TemplatesDir string
	Severities   string
	OutputFile   string
	Headers      []string
}

// NucleiArgs builds the nuclei argument list. A targets file takes
// precedence over a single target.
func NucleiArgs(o NucleiOptions) []string {
	var args []string
	if o.TargetsFile != "" {
		args = append(args, "-list", o.TargetsFile)
	} else {
		args = append(args, "-u", o.Target)
	}

	templates := o.TemplatesDir
	if templates == "" {
		templates = config.DefaultNucleiTemplatesDir
	}
	args = append(args, "-t", config.ExpandHome(templates), "-o", o.OutputFile)

	if o.Severities != "" {
		args = append(args, "-severity", o.Severities)
	}
	for _, h := range o.Headers {
		if strings.TrimSpace(h) != "" {
			args = append(args, "-H", h)
		}
	}
	return args
}

// CRLFuzzOptions drive a crlfuzz run over a list file
type CRLFuzzOptions struct {
	TargetsFile string
	OutputFile  string
	Headers     []string
}

// CRLFuzzArgs builds the crlfuzz argument list in silent mode
func CRLFuzzArgs(o CRLFuzzOptions) []string {
	args := []string{"-l", o.TargetsFile, "-o", o.OutputFile, "-s"}
	for _, h := range o.Headers {
		if strings.TrimSpace(h) != "" {
			args = append(args, "-H", h)
		}
	}
	return args
}
