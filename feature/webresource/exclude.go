package webresource

import (
	"path"
	"strings"
)

// Matcher decides which local paths are left out of the sync.
//
// Patterns ending in "/" match a directory and everything below it. Patterns
// with glob characters match the whole relative path or its base name. Other
// patterns match the exact path, a directory prefix, or a file base name.
type Matcher struct {
	patterns []string
}

// NewMatcher returns a matcher for patterns. Blank patterns are dropped.
func NewMatcher(patterns []string) *Matcher {
	kept := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return &Matcher{patterns: kept}
}

// IsExcluded reports whether relPath, a slash separated path relative to the
// source root, is excluded. A nil matcher excludes nothing.
func (m *Matcher) IsExcluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	for _, p := range m.patterns {
		if strings.HasSuffix(p, "/") {
			dirPattern := strings.TrimSuffix(p, "/")
			if relPath == dirPattern || strings.HasPrefix(relPath, dirPattern+"/") {
				return true
			}
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, relPath); ok {
				return true
			}
			if ok, _ := path.Match(p, path.Base(relPath)); ok {
				return true
			}
			continue
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if !isDir && path.Base(relPath) == p {
			return true
		}
	}
	return false
}
