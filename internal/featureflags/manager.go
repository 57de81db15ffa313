// Package featureflags evaluates runtime switches configured through FEATURE_FLAGS.
package featureflags

import (
	"hash/crc32"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// IndexCache turns the global feed page cache on or off.
	IndexCache = "index_cache"
	// ImageUploads allows attaching images to posts.
	ImageUploads = "image_uploads"
)

// Defaults apply before the configured list, which may override them.
const Defaults = "index_cache=on,image_uploads=on"

// Manager holds flags parsed from a comma separated name=value list.
// A value is on/off (also true/false, yes/no, 1/0) or a rollout percentage such as 25%.
type Manager struct {
	rollout map[string]int
}

// NewManager parses Defaults, then raw on top of them. Malformed entries are ignored.
func NewManager(raw string) *Manager {
	m := &Manager{rollout: make(map[string]int)}
	m.apply(Defaults)
	m.apply(raw)
	return m
}

func (m *Manager) apply(raw string) {
	for _, entry := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = canonical(name)
		pct, ok := parsePercent(canonical(value))
		if name == "" || !ok {
			continue
		}
		m.rollout[name] = pct
	}
}

// parsePercent maps a flag value onto the share of users that see the flag on.
func parsePercent(v string) (int, bool) {
	switch v {
	case "on", "true", "yes", "1":
		return 100, true
	case "off", "false", "no", "0":
		return 0, true
	}
	n, ok := strings.CutSuffix(v, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(n)
	if err != nil {
		return 0, false
	}
	return min(max(pct, 0), 100), true
}

// Enabled reports whether name is on for userID. Partial rollouts pick a stable
// subset of signed-in users; anonymous visitors (userID 0) only see fully enabled flags.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	pct := m.rollout[canonical(name)]
	switch {
	case pct >= 100:
		return true
	case pct <= 0, userID == 0:
		return false
	}
	return bucket(canonical(name), userID) < pct
}

// String renders the effective configuration in a stable order, e.g. for startup logs.
func (m *Manager) String() string {
	if m == nil {
		return ""
	}
	names := make([]string, 0, len(m.rollout))
	for name := range m.rollout {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		var value string
		switch pct := m.rollout[name]; pct {
		case 100:
			value = "on"
		case 0:
			value = "off"
		default:
			value = strconv.Itoa(pct) + "%"
		}
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, ",")
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket places a user in [0, 100) per flag, so rollouts of different flags are independent.
func bucket(name string, userID uint) int {
	key := name + "/" + strconv.FormatUint(uint64(userID), 10)
	return int(crc32.ChecksumIEEE([]byte(key)) % 100)
}
