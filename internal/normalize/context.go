package normalize

// Context carries the caller-supplied strings that get redacted out of the
// diagnostic text. It is read-only for the duration of one Diagnostics call
// and is never retained.
type Context struct {
	// Crate is the package identifier, replaced with $CRATE.
	Crate string
	// SourceDir is the absolute path to the directory holding the test
	// sources, replaced with $DIR.
	SourceDir string
	// Workspace is the absolute path to the workspace root, replaced with
	// $WORKSPACE.
	Workspace string
}
