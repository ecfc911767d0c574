package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Probe Defaults
	DefaultProbeTimeoutMinutes = 120
	DefaultGoBinDir            = "~/go/bin"

	// XSS (dalfox) Defaults
	DefaultXSSWorkers = 50
	DefaultXSSDelayMS = 100
	DefaultXSSOnlyPOC = "v,r"

	// Param discovery (x8) Defaults
	DefaultParamConcurrency = 3
	DefaultParamDelayMS     = 100
	DefaultEnrichedURLsFile = "urls_param_discovered.txt"
	ParamWordlistEnv        = "PARAM_WORDLIST"

	// Nuclei Defaults
	DefaultNucleiTemplatesDir   = "~/nuclei-templates/http/"
	DefaultTakeoverTemplatesDir = "~/nuclei-templates/http/takeovers"
	DefaultTakeoverSeverities   = "info,low,medium,high,critical"

	// Extractor Defaults
	DefaultExtractorWorkers          = 5
	DefaultExtractorTimeoutSecs      = 12
	DefaultExtractorMaxContentSizeMB = 10

	// Native scanner (methods, cors) Defaults
	DefaultScannerWorkers     = 5
	DefaultScannerTimeoutSecs = 10

	// Request Defaults
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageHistoryDBPath    = "database/history.db"
	DefaultStorageCompressionCodec = "zstd"

	// Output Defaults
	DefaultOutputDir = "."

	ConfigPathEnv = "AYUMI_CONFIG_PATH"
)

// Supported pipeline actions
const (
	ActionXSS      = "xss"
	ActionParams   = "params"
	ActionMethods  = "methods"
	ActionCORS     = "cors"
	ActionNuclei   = "nuclei"
	ActionCRLF     = "crlf"
	ActionLinks    = "links"
	ActionSecrets  = "secrets"
	ActionTakeover = "takeover"
)

// KnownActions lists every action accepted by the CLI and config validation
var KnownActions = []string{
	ActionXSS, ActionParams, ActionMethods, ActionCORS,
	ActionNuclei, ActionCRLF, ActionLinks, ActionSecrets, ActionTakeover,
}

// DefaultWordlistSearchPaths are the common parameter wordlist locations checked
// after an explicit path and the PARAM_WORDLIST variable. Globs are allowed.
var DefaultWordlistSearchPaths = []string{
	"~/.local/lib/python3*/site-packages/arjun/db/large.txt",
	"/usr/lib/python3/dist-packages/arjun/db/large.txt",
	"~/.local/lib/python3*/site-packages/arjun/db/default.txt",
	"/usr/share/seclists/Discovery/Web-Content/burp-parameter-names.txt",
	"~/SecLists/Discovery/Web-Content/burp-parameter-names.txt",
	"~/wordlists/params.txt",
	"~/samlists/params.txt",
}

// DefaultUserAgents is the rotation pool for content fetching
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
}
