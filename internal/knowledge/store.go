// Package knowledge holds the static grounding context: a fixed ordered set of
// company and product documents concatenated into one in-memory blob.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// SectionNotFound is returned by GetSection when no heading matches.
const SectionNotFound = "Section not found in the knowledge base."

// Store caches the concatenated knowledge documents. The blob is built once at
// startup and replaced wholesale on Reload; it is never partially updated.
type Store struct {
	source   DocumentSource
	manifest []string

	mu      sync.RWMutex
	context string
	loaded  bool
}

// NewStore creates a Store over the given source and ordered manifest.
func NewStore(source DocumentSource, manifest []string) *Store {
	return &Store{source: source, manifest: manifest}
}

// Load reads every manifest document and atomically replaces the cached blob.
// Documents that fail to read are skipped and logged. Load fails only when the
// manifest is empty or no document could be read at all; callers treat that as
// fatal at startup.
func (s *Store) Load(ctx context.Context) error {
	if len(s.manifest) == 0 {
		return fmt.Errorf("knowledge manifest is empty")
	}

	var b strings.Builder
	loaded := 0
	for _, id := range s.manifest {
		text, err := s.source.ReadDocument(ctx, id)
		if err != nil {
			log.Printf("knowledge: skipping document %q: %v", id, err)
			continue
		}
		b.WriteString("=== ")
		b.WriteString(strings.ToUpper(id))
		b.WriteString(" ===\n")
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
		loaded++
	}

	if loaded == 0 {
		return fmt.Errorf("failed to load any of %d knowledge documents", len(s.manifest))
	}

	blob := b.String()

	s.mu.Lock()
	s.context = blob
	s.loaded = true
	s.mu.Unlock()

	log.Printf("knowledge: loaded %d/%d documents (%d characters)", loaded, len(s.manifest), len(blob))
	return nil
}

// Reload re-runs Load. The whole blob is replaced; there is no incremental path.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// GetContext returns the cached blob verbatim, or an empty string (with a
// logged warning) if no load has succeeded yet.
func (s *Store) GetContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		log.Printf("knowledge: context requested before a successful load")
		return ""
	}
	return s.context
}

// Loaded reports whether a load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Size returns the length of the cached blob in characters.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.context)
}

// GetSection does a best-effort, case-insensitive lookup of a heading line
// containing name and returns everything up to the next heading of equal or
// higher level. Document markers ("=== ID ===") count as top-level headings.
func (s *Store) GetSection(name string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return SectionNotFound
	}

	lines := strings.Split(s.GetContext(), "\n")
	start := -1
	level := 0
	for i, line := range lines {
		l := headingLevel(line)
		if l == 0 {
			continue
		}
		if start == -1 {
			if strings.Contains(strings.ToLower(line), needle) {
				start = i
				level = l
			}
			continue
		}
		if l <= level {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n"))
		}
	}

	if start == -1 {
		return SectionNotFound
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

// headingLevel returns 0 for non-heading lines, the number of leading '#'
// characters for markdown headings, and 1 for document markers.
func headingLevel(line string) int {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "=== ") && strings.HasSuffix(trimmed, " ===") {
		return 1
	}
	if !strings.HasPrefix(trimmed, "#") {
		return 0
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n < len(trimmed) && trimmed[n] != ' ' {
		return 0
	}
	return n
}
