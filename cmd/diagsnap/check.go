package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"diagsnap/internal/normalize"
	"diagsnap/internal/snapcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] raw-output...",
	Short: "Compare raw compiler output against stored snapshots",
	Long: `Check normalizes each raw output file and compares it with its stored
snapshot. A snapshot matches when it equals any normalization variation,
so snapshots saved under older pipeline versions keep passing`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("snapshot", "", "explicit snapshot file (single raw output only)")
	checkCmd.Flags().String("snapshot-ext", ".stderr", "extension of the sibling snapshot file")
	checkCmd.Flags().Int("jobs", runtime.NumCPU(), "number of checks to run in parallel")
	checkCmd.Flags().String("cache-dir", "", "directory for the check result cache (disabled when empty)")
	checkCmd.Flags().String("crate", "", "package identifier to redact as $CRATE")
	checkCmd.Flags().String("source-dir", "", "source directory to redact as $DIR")
	checkCmd.Flags().String("workspace", "", "workspace root to redact as $WORKSPACE")
}

func runCheck(cmd *cobra.Command, args []string) error {
	pairs, err := collectPairs(cmd, args)
	if err != nil {
		return err
	}

	nctx, err := contextFromCheckFlags(cmd)
	if err != nil {
		return err
	}

	opts := snapcheck.Options{}
	opts.Jobs, _ = cmd.Flags().GetInt("jobs")
	if cacheDir, _ := cmd.Flags().GetString("cache-dir"); cacheDir != "" {
		cache, err := snapcheck.OpenDiskCache(cacheDir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}

	results, err := snapcheck.CheckAll(cmd.Context(), pairs, nctx, opts)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	failed := renderResults(cmd.OutOrStdout(), results, useColor(cmd, os.Stdout), quiet)
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func collectPairs(cmd *cobra.Command, args []string) ([]snapcheck.Pair, error) {
	snapshot, _ := cmd.Flags().GetString("snapshot")
	if snapshot != "" {
		if len(args) != 1 {
			return nil, fmt.Errorf("--snapshot requires exactly one raw output file, got %d", len(args))
		}
		return []snapcheck.Pair{{Raw: args[0], Snapshot: snapshot}}, nil
	}

	ext, _ := cmd.Flags().GetString("snapshot-ext")
	if ext == "" || !strings.HasPrefix(ext, ".") {
		return nil, fmt.Errorf("--snapshot-ext must start with a dot, got %q", ext)
	}

	pairs := make([]snapcheck.Pair, 0, len(args))
	for _, raw := range args {
		base := strings.TrimSuffix(raw, filepath.Ext(raw))
		pairs = append(pairs, snapcheck.Pair{Raw: raw, Snapshot: base + ext})
	}
	return pairs, nil
}

func contextFromCheckFlags(cmd *cobra.Command) (normalize.Context, error) {
	crate, _ := cmd.Flags().GetString("crate")
	sourceDir, _ := cmd.Flags().GetString("source-dir")
	workspace, _ := cmd.Flags().GetString("workspace")
	return resolveContext(crate, sourceDir, workspace, ".")
}

func renderResults(w io.Writer, results []snapcheck.Result, colored, quiet bool) int {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	header := color.New(color.FgCyan)
	if !colored {
		pass.DisableColor()
		fail.DisableColor()
		header.DisableColor()
	}

	width := reportWidth()
	failed := 0

	for _, res := range results {
		switch {
		case res.Matched:
			if !quiet {
				fmt.Fprintf(w, "%s %s\n", pass.Sprint("ok"), res.Raw)
			}
			continue
		case res.SnapshotMissing:
			failed++
			fmt.Fprintf(w, "%s %s: snapshot %s does not exist\n", fail.Sprint("MISSING"), res.Raw, res.Snapshot)
			fmt.Fprintln(w, header.Sprint("preferred normalization:"))
			writeIndented(w, res.Preferred, width)
		default:
			failed++
			fmt.Fprintf(w, "%s %s (snapshot: %s)\n", fail.Sprint("MISMATCH"), res.Raw, res.Snapshot)
			fmt.Fprintln(w, header.Sprint("expected:"))
			writeIndented(w, res.Expected, width)
			fmt.Fprintln(w, header.Sprint("actual (preferred normalization):"))
			writeIndented(w, res.Preferred, width)
		}
	}
	return failed
}

// writeIndented prints text with a two-space gutter, truncating lines that
// would overflow the terminal.
func writeIndented(w io.Writer, text string, width int) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line = "  " + line
		if runewidth.StringWidth(line) > width {
			line = runewidth.Truncate(line, width, "...")
		}
		fmt.Fprintln(w, line)
	}
}

func reportWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 120
}
