package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Output tokens embedded into normalized text. They form the implicit
// contract with stored snapshot files and must never change.
const (
	tokenCrate     = "$CRATE"
	tokenDir       = "$DIR"
	tokenWorkspace = "$WORKSPACE"
	tokenRust      = "$RUST"
)

// rustLibMarker identifies a standard-library source path inside a ":::"
// secondary-location line. The collapse keeps the "/src/..." tail, so only
// the first 17 bytes of the marker ("/rustlib/src/rust") fold into $RUST.
const (
	rustLibMarker     = "/rustlib/src/rust/src/"
	rustLibMarkerKeep = len("/rustlib/src/rust")
)

// Trim decodes raw tool output and normalizes its tail: ill-formed UTF-8
// degrades to U+FFFD rather than failing, all trailing whitespace (newlines
// included) is removed, and exactly one newline is appended when anything
// remains. All-whitespace input yields the empty string. Trim is total and
// idempotent.
func Trim(output []byte) string {
	return trimString(decodeLossy(output))
}

func trimString(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}
	return s + "\n"
}

// decodeLossy converts arbitrary bytes to valid UTF-8, replacing ill-formed
// sequences with the replacement character.
func decodeLossy(output []byte) string {
	decoded, _, err := transform.Bytes(runes.ReplaceIllFormed(), output)
	if err != nil {
		// ReplaceIllFormed never errors; keep the raw bytes if it ever does.
		return string(output)
	}
	return string(decoded)
}

// Diagnostics produces the set of normalized outputs against which a stored
// snapshot is considered a match. One variation is computed per Level, in
// ascending order, so snapshots saved under older (shorter) pipelines keep
// matching via Variations.Any while Variations.Preferred carries the most
// cleaned form for display.
//
// The call is pure: ctx is only read, and the result owns its strings.
func Diagnostics(output []byte, ctx Context) Variations {
	text := strings.ReplaceAll(decodeLossy(output), "\r\n", "\n")

	variations := make([]string, 0, len(levels))
	for _, level := range levels {
		variations = append(variations, apply(text, level, ctx))
	}
	return Variations{variations: variations}
}

// apply runs the per-line filter over the whole text at the given level and
// reassembles the survivors. The suffix guard keeps at most one blank line
// in a row; dropped lines never leave a double gap. Existing snapshots
// depend on that exact joining behavior.
func apply(text string, level Level, ctx Context) string {
	var normalized []byte
	for _, line := range splitLines(text) {
		filtered, keep := filterLine(line, level, ctx)
		if !keep {
			continue
		}
		normalized = append(normalized, filtered...)
		if n := len(normalized); n < 2 || normalized[n-1] != '\n' || normalized[n-2] != '\n' {
			normalized = append(normalized, '\n')
		}
	}
	return trimString(string(normalized))
}

// splitLines splits on '\n' without manufacturing a trailing empty line for
// newline-terminated text.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// filterLine rewrites or drops a single line at the given level. The second
// return is false when the line must not be emitted at all.
func filterLine(line string, level Level, ctx Context) (string, bool) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)

	if strings.HasPrefix(trimmed, "--> ") {
		// "  --> /tmp/proj/src/main.rs:3:5" keeps the arrow and the file
		// name with its position suffix; everything between folds into
		// $DIR/. Lines without a path separator fall through untouched by
		// this rule.
		if cutEnd := strings.LastIndexAny(line, `/\`); cutEnd >= 0 {
			cutStart := strings.IndexByte(line, '>') + 2
			return line[:cutStart] + tokenDir + "/" + line[cutEnd+1:], true
		}
	}

	if strings.HasPrefix(trimmed, "::: ") {
		// Secondary-location lines get the workspace redaction and slash
		// normalization but skip the generic replacements below.
		out := replaceCaseInsensitive(line, ctx.Workspace, tokenWorkspace)
		out = strings.ReplaceAll(out, `\`, "/")
		if level >= LevelRustLib {
			if pos := strings.Index(out, rustLibMarker); pos >= 0 {
				// ::: $RUST/src/libstd/net/ip.rs:83:1
				start := strings.Index(out, "::: ") + len("::: ")
				out = out[:start] + tokenRust + out[pos+rustLibMarkerKeep:]
			}
		}
		return out, true
	}

	if strings.HasPrefix(line, "error: aborting due to ") {
		return "", false
	}
	if line == "To learn more, run the command again with --verbose." {
		return "", false
	}
	if level >= LevelStripCouldNotCompile &&
		strings.HasPrefix(line, "error: Could not compile `") {
		return "", false
	}
	if level >= LevelStripCouldNotCompile2 &&
		strings.HasPrefix(line, "error: could not compile `") {
		return "", false
	}
	if level >= LevelStripForMoreInformation &&
		strings.HasPrefix(line, "For more information about this error, try `rustc --explain") {
		return "", false
	}
	if level >= LevelStripForMoreInformation2 {
		if strings.HasPrefix(line, "Some errors have detailed explanations:") {
			return "", false
		}
		if strings.HasPrefix(line, "For more information about an error, try `rustc --explain") {
			return "", false
		}
	}

	if level >= LevelDirBackslash && ctx.SourceDir != "" {
		// Windows builds print the source directory with a trailing
		// backslash that the case-insensitive replace below would turn into
		// "$DIR\"; fold it to "$DIR/" first.
		line = strings.ReplaceAll(line, ctx.SourceDir+`\`, tokenDir+"/")
	}

	if level >= LevelTrimEnd {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
	}

	if ctx.Crate != "" {
		line = strings.ReplaceAll(line, ctx.Crate, tokenCrate)
	}
	line = replaceCaseInsensitive(line, ctx.SourceDir, tokenDir)
	line = replaceCaseInsensitive(line, ctx.Workspace, tokenWorkspace)

	return line, true
}
