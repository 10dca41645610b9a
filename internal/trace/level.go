package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // failed spans only
	LevelPhase               // driver + pass boundaries
	LevelDetail              // + per-unit lowering
	LevelDebug               // + definitions and loop helpers
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// widest scope each level lets through; failed spans pass from LevelError up
var levelScopes = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeUnit, LevelDebug: ScopeNode}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether regular events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(levelScopes) && scope <= levelScopes[l]
}

// Accepts reports whether ev passes at this level.
func (l Level) Accepts(ev *Event) bool {
	if ev.Failed && l >= LevelError {
		return true
	}
	return l.ShouldEmit(ev.Scope)
}
