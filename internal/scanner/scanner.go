// Package scanner finds the TypeScript and JavaScript sources to analyze.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/elide/pkg/config"
	"github.com/panbanda/elide/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config  *config.Config
	matcher gitignore.Matcher
	gitRoot string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads every .gitignore below the repository root containing
// root. Config patterns are applied separately through config.ShouldExclude.
func (s *Scanner) loadGitignore(root string) {
	if !s.config.Exclude.Gitignore || s.matcher != nil {
		return
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return
	}
	gitRoot := findGitRoot(abs)
	if gitRoot == "" {
		return
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.gitRoot = gitRoot
	s.matcher = gitignore.NewMatcher(patterns)
}

// isExcluded checks if a path matches any exclusion rule. rel is relative
// to the scan root; the gitignore matcher needs the path relative to the
// repository root instead.
func (s *Scanner) isExcluded(path, rel string, isDir bool) bool {
	check := rel
	if isDir {
		check += string(filepath.Separator)
	}
	if s.config.ShouldExclude(check) {
		return true
	}
	if s.matcher == nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	fromGit, err := filepath.Rel(s.gitRoot, abs)
	if err != nil || strings.HasPrefix(fromGit, "..") {
		return false
	}
	return s.matcher.Match(strings.Split(fromGit, string(filepath.Separator)), isDir)
}

// ScanDir recursively scans a directory for source files. Results are
// sorted so runs are reproducible.
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if relPath != "." && s.isExcluded(path, relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(path, relPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// ScanPaths expands a mix of files and directories into the source files
// to analyze. Explicit files are kept even when exclusion rules match them,
// as long as their language is supported.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		var found []string
		if info.IsDir() {
			found, err = s.ScanDir(p)
			if err != nil {
				return nil, err
			}
		} else if parser.DetectLanguage(p) != parser.LangUnknown {
			found = []string{p}
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// GroupByLanguage groups files by their detected language.
func (s *Scanner) GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		if lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}
