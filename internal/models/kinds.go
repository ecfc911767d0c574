package models

import "strings"

// Canonical finding kinds shared by parsers, native scanners and the classifier
const (
	KindVerified  = "verified"
	KindReflected = "reflected"
	KindGrep      = "grep"
	KindParameter = "parameter"
	KindCRLF      = "crlf-injection"
	KindFinding   = "finding"
	KindUnknown   = "unknown"

	KindCORSOriginReflected = "origin-reflected"
	KindCORSWildcard        = "wildcard-origin"
)

// credentialsSuffix marks a CORS kind where credentials are also allowed
const credentialsSuffix = "+credentials"

// WithCredentials returns the credentialed variant of a CORS kind
func WithCredentials(kind string) string {
	if HasCredentials(kind) {
		return kind
	}
	return kind + credentialsSuffix
}

// HasCredentials reports whether a CORS kind carries the credentials flag
func HasCredentials(kind string) bool {
	return strings.HasSuffix(kind, credentialsSuffix)
}
