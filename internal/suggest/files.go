package suggest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sahilm/fuzzy"

	"sidekick/internal/engine"
)

// defaultIgnorePatterns are common directories to skip regardless of any
// .gitignore.
var defaultIgnorePatterns = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"__pycache__",
	"coverage",
	".idea",
	".vscode",
}

const (
	maxCandidates = 50
	maxWalkDepth  = 12
	listingTTL    = 5 * time.Second
)

// FileSource walks the workspace and answers file-mention queries. The
// listing is cached briefly so rapid query refinement does not re-walk the
// tree on every keystroke.
type FileSource struct {
	Root string

	ignore *gitignore.GitIgnore

	mu       sync.Mutex
	listing  []engine.FileRef
	listedAt time.Time
}

func New(root string) *FileSource {
	s := &FileSource{Root: filepath.Clean(root)}
	patterns := append([]string(nil), defaultIgnorePatterns...)
	if b, err := os.ReadFile(filepath.Join(s.Root, ".gitignore")); err == nil {
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, line)
		}
	}
	s.ignore = gitignore.CompileIgnoreLines(patterns...)
	return s
}

// QueryFiles returns candidates for a mention query, ranked by fuzzy match
// quality. An empty query returns the unfiltered listing in path order.
func (s *FileSource) QueryFiles(ctx context.Context, query string) ([]engine.FileRef, error) {
	listing, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return cap50(listing), nil
	}

	paths := make([]string, len(listing))
	for i, ref := range listing {
		paths[i] = ref.Path
	}
	matches := fuzzy.Find(query, paths)
	out := make([]engine.FileRef, 0, len(matches))
	for _, m := range matches {
		out = append(out, listing[m.Index])
	}
	return cap50(out), nil
}

func cap50(refs []engine.FileRef) []engine.FileRef {
	if len(refs) > maxCandidates {
		refs = refs[:maxCandidates]
	}
	return append([]engine.FileRef(nil), refs...)
}

func (s *FileSource) list(ctx context.Context) ([]engine.FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listing != nil && time.Since(s.listedAt) < listingTTL {
		return s.listing, nil
	}

	var refs []engine.FileRef
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		if strings.Count(rel, string(filepath.Separator)) >= maxWalkDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel = filepath.ToSlash(rel)
		if s.ignore.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		refs = append(refs, engine.FileRef{
			Path:     rel,
			FullPath: path,
			Name:     d.Name(),
			IsFolder: d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	s.listing = refs
	s.listedAt = time.Now()
	return refs, nil
}
