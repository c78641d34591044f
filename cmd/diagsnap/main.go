package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"diagsnap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "diagsnap",
	Short: "Normalize compiler diagnostics for snapshot testing",
	Long: `diagsnap reduces raw compiler diagnostic output to canonical forms
and compares it against stored snapshot files`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the persistent --color flag against the given stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}
