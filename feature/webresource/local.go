package webresource

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// maxLinkHops bounds the resolution of chained symbolic links.
const maxLinkHops = 40

// ScanLocal walks root and returns the path of every regular file relative to
// root, with "/" separators. Excluded directories are not descended into.
// The order is the lexical walk order of afero.Walk.
//
// Symbolic links are followed: a link to a file is listed under the link's
// own path and a link to a directory is walked as if it were one. Broken links
// and links that point back into a directory being walked are skipped with a
// warning.
func ScanLocal(fs afero.Fs, root string, matcher *Matcher, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	s := &scanner{
		fs:      fs,
		matcher: matcher,
		logger:  logger,
		files:   []string{},
		active:  []string{absPath(root)},
	}
	if err := s.walk(root, ""); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return s.files, nil
}

type scanner struct {
	fs      afero.Fs
	matcher *Matcher
	logger  *zap.Logger
	files   []string
	// active holds the real directories currently being walked.
	active []string
}

// walk lists dir, naming entries prefix/<path relative to dir>.
func (s *scanner) walk(dir, prefix string) error {
	return afero.Walk(s.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = path.Clean(path.Join(prefix, filepath.ToSlash(rel)))

		if info.Mode()&os.ModeSymlink != 0 {
			return s.followLink(p, rel)
		}

		if info.IsDir() {
			if s.matcher.IsExcluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if s.matcher.IsExcluded(rel, false) {
			return nil
		}

		s.files = append(s.files, rel)
		return nil
	})
}

func (s *scanner) followLink(p, rel string) error {
	target, err := s.fs.Stat(p)
	if err != nil {
		s.logger.Warn("Skipping broken symbolic link", zap.String("file", rel), zap.Error(err))
		return nil
	}

	if !target.IsDir() {
		if !target.Mode().IsRegular() || s.matcher.IsExcluded(rel, false) {
			return nil
		}
		s.files = append(s.files, rel)
		return nil
	}

	if s.matcher.IsExcluded(rel, true) {
		return nil
	}

	resolved, err := s.resolve(p)
	if err != nil {
		return err
	}
	for _, dir := range s.active {
		if within(dir, resolved) {
			s.logger.Warn("Skipping symbolic link cycle", zap.String("dir", rel), zap.String("target", resolved))
			return nil
		}
	}

	s.active = append(s.active, resolved)
	defer func() { s.active = s.active[:len(s.active)-1] }()
	return s.walk(resolved, rel)
}

// resolve follows a chain of links from p to a path that is not a link.
func (s *scanner) resolve(p string) (string, error) {
	reader, ok := s.fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("cannot read symbolic link %s on this filesystem", p)
	}

	current := p
	for i := 0; i < maxLinkHops; i++ {
		target, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = absPath(target)

		info, err := s.lstat(current)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}
	}
	return "", fmt.Errorf("too many levels of symbolic links at %s", p)
}

func (s *scanner) lstat(p string) (os.FileInfo, error) {
	if l, ok := s.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(p)
		return info, err
	}
	return s.fs.Stat(p)
}

// within reports whether dir is target or lies below it.
func within(dir, target string) bool {
	rel, err := filepath.Rel(target, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
