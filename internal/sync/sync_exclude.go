package sync

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// Informational files that are checked in next to the assets but must never
// ship inside an app bundle.
var defaultExcludeLines = []string{
	"README.md",
}

// ExcludeList decides which relative paths are kept out of the destination.
// Matching entries are never copied, and are deleted from the destination if
// found there.
type ExcludeList struct {
	ignore *gitignore.GitIgnore
}

func NewExcludeList(lines ...string) *ExcludeList {
	return &ExcludeList{ignore: gitignore.CompileIgnoreLines(lines...)}
}

// DefaultExcludes returns the standard exclusion list: README.md at any
// directory depth.
func DefaultExcludes() *ExcludeList {
	return NewExcludeList(defaultExcludeLines...)
}

func (e *ExcludeList) ShouldExclude(relPath string) bool {
	return e.ignore.MatchesPath(relPath)
}
