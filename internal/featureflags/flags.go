// Package featureflags evaluates runtime toggles configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags understood by the application.
const (
	// SelfFollow lets a user follow their own account.
	SelfFollow = "self_follow"
	// SelfLike lets a user like their own messages.
	SelfLike = "self_like"
)

// rule is a parsed flag value: always on, always off, or a percentage rollout.
type rule struct {
	raw     string
	percent int
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}, true
	case "off", "false", "0":
		return rule{raw: value, percent: 0}, true
	}
	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return rule{}, false
		}
		return rule{raw: value, percent: min(max(pct, 0), 100)}, true
	}
	return rule{}, false
}

// Manager holds the flags parsed from a "name=value,..." list, for example
// "self_follow=on,self_like=25%".
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}
	return &Manager{rules: rules}
}

// Enabled reports whether name is on for userID. Percentage rollouts bucket
// users deterministically and never enable a flag for the anonymous user 0.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.percent <= 0:
		return false
	case r.percent >= 100:
		return true
	case userID == 0:
		return false
	default:
		return rolloutBucket(name, userID) < r.percent
	}
}

// Raw returns the configured values keyed by flag name.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
