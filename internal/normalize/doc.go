// Package normalize reduces raw compiler diagnostic output to a set of
// canonical forms suitable for snapshot comparison.
//
// # Purpose
//
//   - Decode raw tool output losslessly-as-possible and normalize line
//     endings and trailing whitespace (Trim).
//   - Run an ordered pipeline of per-line filters, one pass per Level,
//     producing one candidate string per level (Diagnostics).
//   - Expose the candidates as a Variations value that a snapshot harness
//     can match against stored expected output.
//
// # Why a set of variations
//
// Each Level applies strictly more filtering than the one before it.
// Snapshots saved before a level existed were normalized by a shorter
// pipeline; keeping every level's output means those snapshots still match.
// A comparison succeeds if the stored text equals any variation, while the
// last (most aggressive) variation is the one shown to the user.
//
// Because of that, the Level list is append-only: inserting or reordering
// levels would change the meaning of snapshots saved under older versions.
//
// # Scope
//
// Package normalize performs no I/O and holds no state. Reading snapshot
// files, invoking the compiler, and reporting mismatches belong to the
// harness layer (internal/snapcheck and the CLI).
package normalize
