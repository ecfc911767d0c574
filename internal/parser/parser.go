package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

const maxLineBytes = 4 * 1024 * 1024

// Parser decodes raw probe output into findings. Decoding falls back from
// a JSON array to JSON-lines to plain-text rules, and a bad line never
// aborts the rest.
type Parser struct {
	schema Schema
	logger zerolog.Logger
	files  *filemanager.FileManager
}

// New creates a parser bound to schema
func New(schema Schema, logger zerolog.Logger) *Parser {
	l := logger.With().Str("component", "ResultParser").Str("tool", schema.Tool).Logger()
	return &Parser{
		schema: schema,
		logger: l,
		files:  filemanager.NewFileManager(l),
	}
}

// Schema returns the bound schema
func (p *Parser) Schema() Schema {
	return p.schema
}

// ParseFile parses a probe output file. A missing or empty file is a valid
// "nothing found" outcome.
func (p *Parser) ParseFile(path string) ([]models.Finding, []error) {
	if path == "" {
		return []models.Finding{}, nil
	}
	data, err := p.files.ReadFile(path, filemanager.DefaultFileReadOptions())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Debug().Str("path", path).Msg("Probe output file does not exist, nothing found")
			return []models.Finding{}, nil
		}
		return []models.Finding{}, []error{errorwrapper.WrapError(err, "failed to read probe output")}
	}
	return p.Parse(data)
}

// Parse decodes raw output. The returned errors are per-record and non-fatal.
func (p *Parser) Parse(raw []byte) ([]models.Finding, []error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []models.Finding{}, nil
	}

	if trimmed[0] == '[' {
		var objects []map[string]any
		if err := json.Unmarshal(trimmed, &objects); err == nil {
			findings, errs := p.fromArray(objects)
			p.logger.Debug().Str("format", "json-array").Int("findings", len(findings)).Int("errors", len(errs)).Msg("Parsed probe output")
			return findings, errs
		}
	}

	findings, errs := p.fromLines(trimmed)
	p.logger.Debug().Str("format", "lines").Int("findings", len(findings)).Int("errors", len(errs)).Msg("Parsed probe output")
	return findings, errs
}

func (p *Parser) fromArray(objects []map[string]any) ([]models.Finding, []error) {
	findings := make([]models.Finding, 0, len(objects))
	var errs []error
	for i, obj := range objects {
		f, err := record(obj).toFinding(p.schema)
		if err != nil {
			if !errors.Is(err, errNoParameters) {
				errs = append(errs, &errorwrapper.ParseError{Line: i + 1, Reason: fmt.Sprintf("array element: %v", err)})
			}
			continue
		}
		findings = append(findings, f)
	}
	return findings, errs
}

func (p *Parser) fromLines(data []byte) ([]models.Finding, []error) {
	var findings []models.Finding
	var errs []error

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := string(bytes.TrimSpace(scanner.Bytes()))
		if line == "" {
			continue
		}

		var jsonErr error
		if line[0] == '{' {
			var obj map[string]any
			if jsonErr = json.Unmarshal([]byte(line), &obj); jsonErr == nil {
				f, err := record(obj).toFinding(p.schema)
				switch {
				case err == nil:
					findings = append(findings, f)
				case !errors.Is(err, errNoParameters):
					errs = append(errs, &errorwrapper.ParseError{Line: lineNo, Raw: line, Reason: err.Error()})
				}
				continue
			}
		}

		if f, rule, ok := parsePlainLine(line, p.schema); ok {
			p.logger.Debug().Int("line", lineNo).Str("rule", rule).Msg("Line decoded by plain-text fallback")
			findings = append(findings, f)
			continue
		}

		reason := "no decoder matched"
		if jsonErr != nil {
			reason = fmt.Sprintf("invalid JSON (%v) and no plain-text rule matched", jsonErr)
		}
		errs = append(errs, &errorwrapper.ParseError{Line: lineNo, Raw: line, Reason: reason})
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, &errorwrapper.ParseError{Line: lineNo + 1, Reason: err.Error()})
	}

	if findings == nil {
		findings = []models.Finding{}
	}
	return findings, errs
}
