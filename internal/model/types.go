// Package model defines shared data structures.
package model

import (
	"sort"
	"time"
)

// Mode selects what a practice session quizzes.
type Mode string

const (
	// ModeChars drills characters from the active character set.
	ModeChars Mode = "char"
	// ModeMapping drills keys of the mapping table.
	ModeMapping Mode = "wb"
)

// ParseMode maps a config or flag value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeChars:
		return ModeChars, true
	case ModeMapping:
		return ModeMapping, true
	default:
		return "", false
	}
}

// Mapping maps a display character to its input code.
type Mapping map[string]string

// Keys returns the mapping keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PlayConfig defines practice settings.
type PlayConfig struct {
	Server     string
	Mode       Mode
	Characters string
	FPS        int
	Speed      float64
}

// ServerConfig defines mapping store server settings.
type ServerConfig struct {
	Port        int
	MappingPath string
	StaticDir   string
}

// SessionSummary captures a completed practice session.
type SessionSummary struct {
	Mode      Mode
	StartedAt time.Time
	EndedAt   time.Time
	Correct   int
	Attempts  int
	Speed     int
	Accuracy  int
}
