// Package lint implements the phplint rule engine: rule registration and
// resolution, execution over PHP syntax trees, conflict-free fix
// application, and baseline-based issue suppression.
package lint

import "fmt"

// Level represents the severity level of an issue. Levels are ordered:
// note < help < warning < error.
type Level int

const (
	// LevelNote is a low-priority observation.
	LevelNote Level = iota
	// LevelHelp is a suggestion for improvement.
	LevelHelp
	// LevelWarning indicates an issue that should be addressed.
	LevelWarning
	// LevelError indicates a serious issue.
	LevelError
)

// String returns the string representation of the Level.
func (l Level) String() string {
	switch l {
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// MeetsOrExceeds reports whether the level is at or above min. The CLI
// uses this as the exit-code predicate.
func (l Level) MeetsOrExceeds(min Level) bool {
	return l >= min
}

// ParseLevel converts a string to a Level value.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "note":
		return LevelNote, nil
	case "help":
		return LevelHelp, nil
	case "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level: %s (must be one of: note, help, warning, error)", s)
	}
}

// Category groups related rules. The set is closed: registering a rule
// with an unlisted category is a registration error.
type Category string

const (
	CategoryBestPractices   Category = "best-practices"
	CategoryClarity         Category = "clarity"
	CategoryConsistency     Category = "consistency"
	CategoryCorrectness     Category = "correctness"
	CategoryDeprecation     Category = "deprecation"
	CategoryMaintainability Category = "maintainability"
	CategoryRedundancy      Category = "redundancy"
	CategorySafety          Category = "safety"
	CategorySecurity        Category = "security"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryBestPractices,
		CategoryClarity,
		CategoryConsistency,
		CategoryCorrectness,
		CategoryDeprecation,
		CategoryMaintainability,
		CategoryRedundancy,
		CategorySafety,
		CategorySecurity,
	}
}

func validCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Safety classifies how safe a proposed fix is to apply automatically.
// The ordering matters: a fix is applied when its safety is at or below
// the configured threshold.
type Safety int

const (
	// SafetySafe fixes preserve behavior and apply by default.
	SafetySafe Safety = iota
	// SafetyPotentiallyUnsafe fixes usually preserve behavior but can
	// change it in edge cases; they require --potentially-unsafe.
	SafetyPotentiallyUnsafe
	// SafetyUnsafe fixes are likely to change behavior; they require
	// --unsafe.
	SafetyUnsafe
)

// String returns the string representation of the Safety level.
func (s Safety) String() string {
	switch s {
	case SafetySafe:
		return "safe"
	case SafetyPotentiallyUnsafe:
		return "potentially-unsafe"
	case SafetyUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}
