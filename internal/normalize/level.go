package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Level selects how aggressively Diagnostics filters the output. Levels are
// totally ordered: processing at level L applies every rule gated at or
// below L. New levels must only be appended, never inserted, so snapshots
// normalized under older pipelines keep their meaning.
type Level uint8

const (
	// LevelBasic applies only the rules that have existed since the first
	// pipeline version: location-line redaction and the always-dropped
	// summary lines.
	LevelBasic Level = iota
	// LevelStripCouldNotCompile drops "error: Could not compile `...`".
	LevelStripCouldNotCompile
	// LevelStripCouldNotCompile2 drops the lower-case wording the compiler
	// switched to later. Both spellings stay in the list so snapshots saved
	// against either wording keep matching.
	LevelStripCouldNotCompile2
	// LevelStripForMoreInformation drops the per-error rustc --explain hint.
	LevelStripForMoreInformation
	// LevelStripForMoreInformation2 drops the batched explanation hints.
	LevelStripForMoreInformation2
	// LevelDirBackslash redacts the backslash-suffixed source directory form
	// produced on Windows.
	LevelDirBackslash
	// LevelTrimEnd strips trailing whitespace from every line.
	LevelTrimEnd
	// LevelRustLib collapses standard-library source paths into $RUST.
	LevelRustLib
)

// levels lists every Level in ascending order. Diagnostics produces one
// variation per entry; the last entry is the preferred one.
var levels = []Level{
	LevelBasic,
	LevelStripCouldNotCompile,
	LevelStripCouldNotCompile2,
	LevelStripForMoreInformation,
	LevelStripForMoreInformation2,
	LevelDirBackslash,
	LevelTrimEnd,
	LevelRustLib,
}

// Levels returns every level in ascending order. The returned slice is a
// copy; mutating it does not affect the pipeline.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// MaxLevel returns the highest (most aggressive) level.
func MaxLevel() Level {
	return levels[len(levels)-1]
}

func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelStripCouldNotCompile:
		return "strip-could-not-compile"
	case LevelStripCouldNotCompile2:
		return "strip-could-not-compile2"
	case LevelStripForMoreInformation:
		return "strip-for-more-information"
	case LevelStripForMoreInformation2:
		return "strip-for-more-information2"
	case LevelDirBackslash:
		return "dir-backslash"
	case LevelTrimEnd:
		return "trim-end"
	case LevelRustLib:
		return "rustlib"
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// ParseLevel resolves a level from its name or its numeric rank. Names are
// matched case-insensitively; ranks must be within the known range.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, l := range levels {
		if l.String() == name {
			return l, nil
		}
	}
	if rank, err := strconv.Atoi(name); err == nil {
		l, err := safecast.Conv[uint8](rank)
		if err != nil || int(l) >= len(levels) {
			return 0, fmt.Errorf("level rank %d out of range 0..%d", rank, len(levels)-1)
		}
		return Level(l), nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
