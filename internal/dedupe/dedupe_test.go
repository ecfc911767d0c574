package dedupe

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		strategy Strategy
		want     Key
	}{
		{"endpoint ignores query", "https://a.com/p?x=1", StrategyEndpoint, "https://a.com/p"},
		{"endpoint folds case", "HTTPS://A.Com/P", StrategyEndpoint, "https://a.com/P"},
		{"endpoint empty path", "https://a.com", StrategyEndpoint, "https://a.com/"},
		{"pattern sorted distinct names", "https://a.com/p?b=1&a=2&a=3", StrategyPattern, "https://a.com/p?a,b"},
		{"pattern without query", "https://a.com/p", StrategyPattern, "https://a.com/p?"},
		{"origin keeps port", "http://a.com:8080/x?y=1", StrategyOrigin, "http://a.com:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyFor(tt.target, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyFor_Malformed(t *testing.T) {
	for _, target := range []string{"::bad", "no-scheme.com/path", "https://a.com/p?%zz"} {
		_, err := KeyFor(target, StrategyPattern)
		assert.ErrorIs(t, err, ErrMalformedTarget, target)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Pattern")
	require.NoError(t, err)
	assert.Equal(t, StrategyPattern, s)

	_, err = ParseStrategy("fuzzy")
	assert.Error(t, err)
}

func TestDedupe_PatternScenario(t *testing.T) {
	in := []string{"http://a.com/x?id=1", "http://a.com/x?id=2", "http://a.com/y"}

	assert.Equal(t, []string{"http://a.com/x?id=1", "http://a.com/y"}, Dedupe(in, StrategyPattern))
}

func TestDedupe_FirstSeenOrder(t *testing.T) {
	in := []string{"https://b.com/", "https://a.com/1", "https://b.com/?z=1", "https://c.com/", "https://a.com/2"}

	assert.Equal(t, []string{"https://b.com/", "https://a.com/1", "https://c.com/"}, Dedupe(in, StrategyOrigin))
}

func TestDedupe_MalformedNeverDropped(t *testing.T) {
	in := []string{"::bad", "https://a.com/", "::bad", "other bad"}

	out := Dedupe(in, StrategyEndpoint)
	assert.Equal(t, []string{"::bad", "https://a.com/", "other bad"}, out)
}

func TestDedupe_RicherReplacesInPlace(t *testing.T) {
	in := []string{"https://a.com/p", "https://b.com/", "https://a.com/p?x=1&y=2", "https://a.com/p?x=1"}

	assert.Equal(t, []string{"https://a.com/p", "https://b.com/"}, Dedupe(in, StrategyEndpoint))
	assert.Equal(t, []string{"https://a.com/p?x=1&y=2", "https://b.com/"}, Dedupe(in, StrategyEndpoint, WithRicher()))
}

func TestDedupe_RicherPrefersPopulatedValues(t *testing.T) {
	in := []string{"https://a.com/p?q=", "https://a.com/p?q=v", "https://a.com/p?q=w"}

	assert.Equal(t, []string{"https://a.com/p?q=v"}, Dedupe(in, StrategyPattern, WithRicher()))
}

func TestDedupe_RicherIgnoredForOrigin(t *testing.T) {
	in := []string{"https://a.com/", "https://a.com/?a=1&b=2"}

	assert.Equal(t, []string{"https://a.com/"}, Dedupe(in, StrategyOrigin, WithRicher()))
}

func TestDedupe_EmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil, StrategyPattern))
}

func randomTargets(r *rand.Rand, n int) []string {
	hosts := []string{"a.com", "A.com", "b.com", "c.com:8443"}
	schemes := []string{"http", "https"}
	paths := []string{"", "/", "/x", "/y/z"}
	params := []string{"id", "q", "page", "debug"}
	malformed := []string{"::bad", "not a url", "https://a.com/x?%zz"}

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if r.IntN(10) == 0 {
			out = append(out, malformed[r.IntN(len(malformed))])
			continue
		}
		target := schemes[r.IntN(len(schemes))] + "://" + hosts[r.IntN(len(hosts))] + paths[r.IntN(len(paths))]
		if k := r.IntN(3); k > 0 {
			sep := "?"
			for j := 0; j < k; j++ {
				value := ""
				if r.IntN(2) == 0 {
					value = fmt.Sprint(r.IntN(5))
				}
				target += sep + params[r.IntN(len(params))] + "=" + value
				sep = "&"
			}
		}
		out = append(out, target)
	}
	return out
}

func keyOrRaw(target string, s Strategy) Key {
	k, err := KeyFor(target, s)
	if err != nil {
		return rawKey(target)
	}
	return k
}

func TestDedupe_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	strategies := []Strategy{StrategyEndpoint, StrategyPattern, StrategyOrigin}

	for round := 0; round < 200; round++ {
		in := randomTargets(r, r.IntN(40))
		for _, s := range strategies {
			for _, opts := range [][]Option{nil, {WithRicher()}} {
				out := Dedupe(in, s, opts...)

				assert.LessOrEqual(t, len(out), len(in))

				keys := make(map[Key]bool, len(out))
				for _, target := range out {
					k := keyOrRaw(target, s)
					assert.False(t, keys[k], "duplicate key %q under %s", k, s)
					keys[k] = true
				}

				// every input key is represented
				for _, target := range in {
					assert.True(t, keys[keyOrRaw(target, s)])
				}

				assert.Equal(t, out, Dedupe(out, s, opts...), "dedupe is not idempotent under %s", s)
			}
		}
	}
}

func TestDeduplicator_Stats(t *testing.T) {
	d := NewDeduplicator(StrategyPattern, zerolog.Nop())

	out := d.Dedupe([]string{"http://a.com/x?id=1", "http://a.com/x?id=2", "http://a.com/y"})

	assert.Len(t, out, 2)
	assert.Equal(t, Stats{Raw: 3, Unique: 2}, d.Stats())
	assert.Equal(t, 1, d.Stats().Collapsed())
	assert.Equal(t, StrategyPattern, d.Strategy())
}
