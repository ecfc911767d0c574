package scanner

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/aleister1102/ayumi/internal/severity"
	"github.com/rs/zerolog"
)

// DangerousMethods are the state-changing verbs probed on every endpoint
var DangerousMethods = []string{http.MethodPut, http.MethodPatch, http.MethodDelete}

// MethodScanner finds endpoints that accept PUT, PATCH or DELETE
type MethodScanner struct {
	client Requester
	logger zerolog.Logger
}

// NewMethodScanner creates a MethodScanner
func NewMethodScanner(client Requester, logger zerolog.Logger) *MethodScanner {
	return &MethodScanner{
		client: client,
		logger: logger.With().Str("component", "MethodScanner").Logger(),
	}
}

// Name implements Check
func (ms *MethodScanner) Name() string {
	return models.FamilyMethods
}

// Scan asks OPTIONS for the allowed verbs, then confirms each dangerous
// verb with a direct empty-body request. Without an advertised list all
// dangerous verbs are tried.
func (ms *MethodScanner) Scan(ctx context.Context, target string) []models.Finding {
	methods := ms.advertised(ctx, target)
	if len(methods) == 0 {
		methods = DangerousMethods
	} else {
		ms.logger.Debug().Str("target", target).Strs("allow", methods).Msg("OPTIONS advertised dangerous methods")
	}

	var findings []models.Finding
	for _, method := range methods {
		if ctx.Err() != nil {
			break
		}
		resp, err := ms.client.Do(&httpclient.HTTPRequest{
			URL:     target,
			Method:  method,
			Body:    strings.NewReader(""),
			Context: ctx,
		})
		if err != nil {
			ms.logger.Debug().Err(err).Str("target", target).Str("method", method).Msg("Method request failed")
			continue
		}
		if severity.MethodBlocked(resp.StatusCode) {
			continue
		}

		findings = append(findings, models.Finding{
			Target:     target,
			Kind:       method,
			Evidence:   fmt.Sprintf("%s %s -> HTTP %d", method, target, resp.StatusCode),
			StatusCode: resp.StatusCode,
			Method:     method,
			Tool:       models.FamilyMethods,
		})
		ms.logger.Info().Str("target", target).Str("method", method).Int("status", resp.StatusCode).Msg("Dangerous method enabled")
	}
	return findings
}

// advertised returns the dangerous verbs listed by OPTIONS in Allow or,
// failing that, Access-Control-Allow-Methods
func (ms *MethodScanner) advertised(ctx context.Context, target string) []string {
	resp, err := ms.client.Do(&httpclient.HTTPRequest{URL: target, Method: http.MethodOptions, Context: ctx})
	if err != nil {
		ms.logger.Debug().Err(err).Str("target", target).Msg("OPTIONS request failed")
		return nil
	}

	allow := resp.Headers.Get("Allow")
	if allow == "" {
		allow = resp.Headers.Get("Access-Control-Allow-Methods")
	}
	if allow == "" {
		return nil
	}

	listed := make(map[string]bool)
	for _, m := range strings.Split(allow, ",") {
		listed[strings.ToUpper(strings.TrimSpace(m))] = true
	}
	var found []string
	for _, m := range DangerousMethods {
		if listed[m] {
			found = append(found, m)
		}
	}
	return found
}
