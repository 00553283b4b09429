package content

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ParsePatch extracts the set of changed paths from a unified multi-file diff,
// as produced by `git diff <from> <to>`.
//
// Both sides of a rename are reported. The a/ and b/ prefixes git adds are
// stripped, and /dev/null (file added or deleted) is ignored. File diffs
// without ---/+++ lines (mode-only changes) are named by their
// "diff --git" header.
func ParsePatch(data []byte) (PathSet, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	paths := make(PathSet, len(fileDiffs))
	for _, fd := range fileDiffs {
		orig, added := fd.OrigName, fd.NewName
		if strings.TrimSpace(orig) == "" && strings.TrimSpace(added) == "" {
			orig, added = gitHeaderNames(fd.Extended)
		}
		if p := patchPath(orig, "a/"); p != "" {
			paths.Add(p)
		}
		if p := patchPath(added, "b/"); p != "" {
			paths.Add(p)
		}
	}
	return paths, nil
}

// gitHeaderNames returns the a/ and b/ names of a "diff --git a/X b/Y"
// extended header line, or empty strings when there is none.
func gitHeaderNames(extended []string) (string, string) {
	for _, line := range extended {
		rest, ok := strings.CutPrefix(line, "diff --git ")
		if !ok || !strings.HasPrefix(rest, "a/") {
			continue
		}
		// Same name on both sides: split in the middle so paths with
		// spaces survive.
		if n := len(rest); n%2 == 1 {
			a, b := rest[:n/2], rest[n/2+1:]
			if rest[n/2] == ' ' && strings.HasPrefix(b, "b/") && a[2:] == b[2:] {
				return a, b
			}
		}
		if i := strings.LastIndex(rest, " b/"); i > 0 {
			return rest[:i], rest[i+1:]
		}
	}
	return "", ""
}

func patchPath(name, prefix string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, prefix)
}
