package models

// Record types tag each line of a mixed result stream
const (
	RecordTypeFinding = "finding"
	RecordTypeMatch   = "match"
)

// ErrorPattern marks a synthetic match recorded for a target that could not be fetched
const ErrorPattern = "error"

// RegexMatch is one extracted string from a fetched target
type RegexMatch struct {
	RecordType string `json:"record_type"`
	Target     string `json:"target"`
	Pattern    string `json:"pattern"`
	Match      string `json:"match"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Error      string `json:"error,omitempty"`
}

// IsError reports whether the match is a fetch-failure marker
func (m RegexMatch) IsError() bool {
	return m.Pattern == ErrorPattern
}

// NewErrorMatch builds the single synthetic match for an unreachable target
func NewErrorMatch(target string, reason error) RegexMatch {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	return RegexMatch{
		Target:  target,
		Pattern: ErrorPattern,
		Match:   "",
		Start:   -1,
		End:     -1,
		Error:   msg,
	}
}
