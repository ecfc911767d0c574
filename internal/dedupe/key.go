package dedupe

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Strategy selects which parts of a target identify it for a probe
type Strategy int

const (
	// StrategyEndpoint keys on scheme, host and path; the query is ignored.
	StrategyEndpoint Strategy = iota
	// StrategyPattern adds the sorted set of query parameter names to the endpoint.
	StrategyPattern
	// StrategyOrigin keys on scheme and host only.
	StrategyOrigin
)

func (s Strategy) String() string {
	switch s {
	case StrategyEndpoint:
		return "endpoint"
	case StrategyPattern:
		return "pattern"
	case StrategyOrigin:
		return "origin"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name to its value
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "endpoint":
		return StrategyEndpoint, nil
	case "pattern":
		return StrategyPattern, nil
	case "origin":
		return StrategyOrigin, nil
	}
	return 0, fmt.Errorf("unknown dedupe strategy %q", name)
}

// Key is the equivalence key of a target under a strategy
type Key string

// ErrMalformedTarget is returned by KeyFor when no key can be derived
var ErrMalformedTarget = errors.New("malformed target")

const rawKeyPrefix = "raw:"

// KeyFor derives the equivalence key of target under strategy.
// Scheme and host are case-folded and an empty path equals "/".
func KeyFor(target string, strategy Strategy) (Key, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedTarget, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", ErrMalformedTarget, target)
	}

	origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	if strategy == StrategyOrigin {
		return Key(origin), nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	endpoint := origin + path

	switch strategy {
	case StrategyEndpoint:
		return Key(endpoint), nil
	case StrategyPattern:
		names, err := paramNames(u.RawQuery)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedTarget, err)
		}
		return Key(endpoint + "?" + strings.Join(names, ",")), nil
	default:
		return "", fmt.Errorf("unknown dedupe strategy %d", int(strategy))
	}
}

// rawKey is the fallback key for targets KeyFor rejects. The prefix keeps it
// apart from any derived key.
func rawKey(target string) Key {
	return Key(rawKeyPrefix + target)
}

// paramNames returns the sorted, distinct parameter names of a raw query
func paramNames(rawQuery string) ([]string, error) {
	if rawQuery == "" {
		return nil, nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// richness ranks how much query information a target carries:
// distinct parameter names first, then how many of them have a value.
type richness struct {
	names     int
	populated int
}

func (r richness) greaterThan(o richness) bool {
	if r.names != o.names {
		return r.names > o.names
	}
	return r.populated > o.populated
}

func richnessOf(target string) richness {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.RawQuery == "" {
		return richness{}
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return richness{}
	}
	r := richness{names: len(values)}
	for _, vs := range values {
		for _, v := range vs {
			if v != "" {
				r.populated++
				break
			}
		}
	}
	return r
}
