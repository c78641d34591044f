package normalize

import (
	"strings"
	"testing"
)

var testContext = Context{
	Crate:     "mycrate",
	SourceDir: "/tmp/proj",
	Workspace: "/tmp/workspace",
}

func TestTrimAppendsSingleNewline(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain line", "error: something", "error: something\n"},
		{"trailing newline kept single", "error: something\n", "error: something\n"},
		{"multiple trailing newlines", "error: something\n\n\n", "error: something\n"},
		{"trailing spaces and tabs", "error: something \t \n", "error: something\n"},
		{"interior whitespace preserved", "a  b\nc\n", "a  b\nc\n"},
		{"empty input", "", ""},
		{"whitespace only", " \n\t\n  ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Trim([]byte(tc.input)); got != tc.want {
				t.Fatalf("Trim(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTrimIsIdempotent(t *testing.T) {
	inputs := []string{
		"error: something\n\n",
		"",
		"  \t\n",
		"line one\nline two  \n\n\n",
	}
	for _, input := range inputs {
		once := Trim([]byte(input))
		twice := Trim([]byte(once))
		if once != twice {
			t.Fatalf("Trim not idempotent for %q: once=%q twice=%q", input, once, twice)
		}
	}
}

func TestTrimReplacesIllFormedUTF8(t *testing.T) {
	got := Trim([]byte{'e', 'r', 'r', 0xff, 0xfe, '!'})
	if !strings.Contains(got, "\uFFFD") {
		t.Fatalf("expected replacement character in %q", got)
	}
	if !strings.HasSuffix(got, "!\n") {
		t.Fatalf("expected valid tail to survive, got %q", got)
	}
}

func TestDiagnosticsRedactsLocationLine(t *testing.T) {
	raw := []byte(" --> /tmp/proj/src/main.rs:3:5\n")
	want := " --> $DIR/main.rs:3:5\n"

	v := Diagnostics(raw, testContext)
	if got := v.Preferred(); got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
	if got := v.At(LevelBasic); got != want {
		t.Fatalf("basic variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsLocationLineWithoutSeparator(t *testing.T) {
	// No path separator means the arrow rule does not fire and the generic
	// replacements apply instead.
	raw := []byte("--> mycrate:1:1\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "--> $CRATE:1:1\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsDropsAbortingLine(t *testing.T) {
	raw := []byte("error: aborting due to previous error\n")
	v := Diagnostics(raw, testContext)
	if got := v.Preferred(); got != "" {
		t.Fatalf("expected empty preferred variation, got %q", got)
	}
	if !v.Any(func(s string) bool { return s == "" }) {
		t.Fatal("expected the empty string to match some variation")
	}
}

func TestDiagnosticsDropsVerboseHint(t *testing.T) {
	raw := []byte("real error\nTo learn more, run the command again with --verbose.\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.At(LevelBasic), "real error\n"; got != want {
		t.Fatalf("basic variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsCouldNotCompileBackwardCompat(t *testing.T) {
	raw := []byte("error[E0599]: no method named `f`\nerror: Could not compile `mycrate`.\n")

	v := Diagnostics(raw, testContext)

	kept := "error[E0599]: no method named `f`\nerror: Could not compile `$CRATE`.\n"
	stripped := "error[E0599]: no method named `f`\n"

	if got := v.At(LevelBasic); got != kept {
		t.Fatalf("basic variation = %q, want %q", got, kept)
	}
	if got := v.At(LevelStripCouldNotCompile); got != stripped {
		t.Fatalf("strip variation = %q, want %q", got, stripped)
	}
	// A snapshot saved under either pipeline version still matches.
	for _, snapshot := range []string{kept, stripped} {
		if !v.Any(func(s string) bool { return s == snapshot }) {
			t.Fatalf("snapshot %q did not match any variation", snapshot)
		}
	}
}

func TestDiagnosticsLowercaseCouldNotCompile(t *testing.T) {
	raw := []byte("error: could not compile `mycrate`\n")
	v := Diagnostics(raw, testContext)

	if got, want := v.At(LevelStripCouldNotCompile), "error: could not compile `$CRATE`\n"; got != want {
		t.Fatalf("old pipeline kept the line wrong: got %q, want %q", got, want)
	}
	if got := v.At(LevelStripCouldNotCompile2); got != "" {
		t.Fatalf("expected line dropped at strip-could-not-compile2, got %q", got)
	}
}

func TestDiagnosticsForMoreInformationLevels(t *testing.T) {
	raw := []byte("error[E0277]: trait bound\n" +
		"For more information about this error, try `rustc --explain E0277`.\n" +
		"Some errors have detailed explanations: E0277, E0308.\n" +
		"For more information about an error, try `rustc --explain E0277`.\n")

	v := Diagnostics(raw, testContext)

	if got := v.At(LevelStripForMoreInformation); !strings.Contains(got, "Some errors have detailed explanations") {
		t.Fatalf("batched hint should survive strip-for-more-information, got %q", got)
	}
	if got, want := v.At(LevelStripForMoreInformation2), "error[E0277]: trait bound\n"; got != want {
		t.Fatalf("strip-for-more-information2 variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsSecondaryLocationLine(t *testing.T) {
	raw := []byte(` ::: /tmp/workspace/lib/thing.rs:83:1` + "\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.At(LevelBasic), " ::: $WORKSPACE/lib/thing.rs:83:1\n"; got != want {
		t.Fatalf("basic variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsRustLibCollapse(t *testing.T) {
	raw := []byte(" ::: /home/user/.rustup/toolchains/stable/lib/rustlib/src/rust/src/libstd/net/ip.rs:83:1\n")
	v := Diagnostics(raw, testContext)

	if got, want := v.Preferred(), " ::: $RUST/src/libstd/net/ip.rs:83:1\n"; got != want {
		t.Fatalf("rustlib variation = %q, want %q", got, want)
	}
	// Below rustlib the toolchain path stays put.
	if got := v.At(LevelBasic); !strings.Contains(got, "/rustlib/src/rust/src/") {
		t.Fatalf("basic variation should keep the toolchain path, got %q", got)
	}
}

func TestDiagnosticsSecondaryLineSkipsGenericReplace(t *testing.T) {
	// "::: " lines return early: the crate identifier is not redacted there.
	raw := []byte("::: mycrate/extra.rs:1:1\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "::: mycrate/extra.rs:1:1\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsDirBackslash(t *testing.T) {
	ctx := Context{Crate: "mycrate", SourceDir: `C:\proj\tests`, Workspace: `C:\proj`}
	raw := []byte(`thing at C:\proj\tests\ui.rs failed` + "\n")

	v := Diagnostics(raw, ctx)
	if got, want := v.At(LevelDirBackslash), "thing at $DIR/ui.rs failed\n"; got != want {
		t.Fatalf("dir-backslash variation = %q, want %q", got, want)
	}
	// Below dir-backslash the generic replace leaves the backslash behind.
	if got, want := v.At(LevelBasic), `thing at $DIR\ui.rs failed`+"\n"; got != want {
		t.Fatalf("basic variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsTrimEndLevel(t *testing.T) {
	raw := []byte("first   \nsecond\n")
	v := Diagnostics(raw, testContext)

	if got, want := v.At(LevelBasic), "first   \nsecond\n"; got != want {
		t.Fatalf("basic variation = %q, want %q", got, want)
	}
	if got, want := v.At(LevelTrimEnd), "first\nsecond\n"; got != want {
		t.Fatalf("trim-end variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsCollapsesBlankRuns(t *testing.T) {
	raw := []byte("a\n\n\n\nb\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "a\n\nb\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsDroppedLineLeavesSingleGap(t *testing.T) {
	raw := []byte("a\n\nerror: aborting due to 2 previous errors\n\nb\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "a\n\nb\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsNormalizesCRLF(t *testing.T) {
	raw := []byte("error: one\r\nerror: two\r\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "error: one\nerror: two\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsCaseInsensitivePathRedaction(t *testing.T) {
	raw := []byte("note: written to /TMP/PROJ/out.rs\n")
	v := Diagnostics(raw, testContext)
	if got, want := v.Preferred(), "note: written to $DIR/out.rs\n"; got != want {
		t.Fatalf("preferred variation = %q, want %q", got, want)
	}
}

func TestDiagnosticsMonotonicDrops(t *testing.T) {
	// Every line dropped at a lower level must also be dropped at every
	// higher level.
	raw := []byte("keep me\n" +
		"error: Could not compile `mycrate`.\n" +
		"error: could not compile `mycrate`\n" +
		"For more information about this error, try `rustc --explain E0001`.\n" +
		"Some errors have detailed explanations: E0001.\n")

	v := Diagnostics(raw, testContext)
	all := Levels()
	for i := 1; i < len(all); i++ {
		present := make(map[string]bool)
		for _, line := range strings.Split(v.At(all[i-1]), "\n") {
			present[line] = true
		}
		for _, line := range strings.Split(v.At(all[i]), "\n") {
			if line != "" && !present[line] {
				t.Fatalf("level %s emits %q that %s already dropped", all[i], line, all[i-1])
			}
		}
	}
}
