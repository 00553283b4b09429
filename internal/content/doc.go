// Package content reads track configuration from a versioned content
// repository.
//
// The engine never touches git objects. It consumes a Source, which exposes
// the head commit, the set of paths changed between two commits, and the
// decoded track and exercise configs at a commit.
//
// DirSource is the bundled Source. It reads an already-materialized snapshot
// layout produced by the git plumbing:
//
//	<root>/HEAD                       head commit SHA
//	<root>/commits/<sha>/...          repository tree at <sha>
//	<root>/diffs/<from>..<to>.patch   optional unified diff between commits
//
// Config files are JSON and are decoded through CUE, of which JSON is a
// subset. All decoded strings are NFC-normalized so slug and username
// comparisons are stable across editors.
package content
