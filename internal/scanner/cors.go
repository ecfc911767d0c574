package scanner

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

// EvilOrigins are sent in turn until one is accepted
var EvilOrigins = []string{"https://evil.com", "https://attacker.com", "null"}

// CORSScanner looks for Access-Control-Allow-Origin reflecting foreign origins
type CORSScanner struct {
	client  Requester
	origins []string
	logger  zerolog.Logger
}

// NewCORSScanner creates a CORSScanner using EvilOrigins
func NewCORSScanner(client Requester, logger zerolog.Logger) *CORSScanner {
	return &CORSScanner{
		client:  client,
		origins: EvilOrigins,
		logger:  logger.With().Str("component", "CORSScanner").Logger(),
	}
}

// Name implements Check
func (cs *CORSScanner) Name() string {
	return models.FamilyCORS
}

// Scan reports at most one finding: the first origin the server accepts
func (cs *CORSScanner) Scan(ctx context.Context, target string) []models.Finding {
	for _, origin := range cs.origins {
		if ctx.Err() != nil {
			return nil
		}
		resp, err := cs.client.Do(&httpclient.HTTPRequest{
			URL:     target,
			Method:  http.MethodGet,
			Headers: map[string]string{"Origin": origin},
			Context: ctx,
		})
		if err != nil {
			cs.logger.Debug().Err(err).Str("target", target).Str("origin", origin).Msg("CORS request failed")
			continue
		}

		acao := resp.Headers.Get("Access-Control-Allow-Origin")
		var kind string
		switch {
		case acao == "":
			continue
		case acao == origin:
			kind = models.KindCORSOriginReflected
		case acao == "*":
			kind = models.KindCORSWildcard
		default:
			continue
		}

		evidence := fmt.Sprintf("CORS Misconfiguration: %s | Origin: %s | Reflected: %s", target, origin, acao)
		if resp.Headers.Get("Access-Control-Allow-Credentials") == "true" {
			kind = models.WithCredentials(kind)
			evidence += " [CREDENTIALS ENABLED]"
		}

		cs.logger.Info().Str("target", target).Str("origin", origin).Str("acao", acao).Str("kind", kind).Msg("CORS misconfiguration")
		return []models.Finding{{
			Target:     target,
			Kind:       kind,
			Evidence:   evidence,
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Payload:    origin,
			Tool:       models.FamilyCORS,
		}}
	}
	return nil
}
