package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"diagsnap/internal/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] [file]",
	Short: "Normalize raw compiler output",
	Long: `Normalize reads raw compiler output from a file (or stdin when the
argument is "-" or absent) and prints one normalized variation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("level", "", "pipeline level to print (name or rank, default: most aggressive)")
	normalizeCmd.Flags().String("crate", "", "package identifier to redact as $CRATE")
	normalizeCmd.Flags().String("source-dir", "", "source directory to redact as $DIR")
	normalizeCmd.Flags().String("workspace", "", "workspace root to redact as $WORKSPACE")
	normalizeCmd.Flags().Bool("trim-only", false, "only decode and trim, skip the filter pipeline")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	raw, err := readRawInput(args)
	if err != nil {
		return err
	}

	trimOnly, _ := cmd.Flags().GetBool("trim-only")
	if trimOnly {
		fmt.Fprint(cmd.OutOrStdout(), normalize.Trim(raw))
		return nil
	}

	nctx, err := contextFromFlags(cmd)
	if err != nil {
		return err
	}

	level := normalize.MaxLevel()
	if levelFlag, _ := cmd.Flags().GetString("level"); levelFlag != "" {
		level, err = normalize.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
	}

	variations := normalize.Diagnostics(raw, nctx)
	fmt.Fprint(cmd.OutOrStdout(), variations.At(level))
	return nil
}

func readRawInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", args[0], err)
	}
	return raw, nil
}

func contextFromFlags(cmd *cobra.Command) (normalize.Context, error) {
	crate, _ := cmd.Flags().GetString("crate")
	sourceDir, _ := cmd.Flags().GetString("source-dir")
	workspace, _ := cmd.Flags().GetString("workspace")
	return resolveContext(crate, sourceDir, workspace, ".")
}
