// Package questions loads the interview question catalog. Sets are plain
// YAML files; generation and resume parsing happen upstream, the engine
// only needs an ordered question sequence per session.
package questions

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Set is one named, ordered sequence of interview questions
type Set struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Category    string   `yaml:"category" json:"category,omitempty"`
	Questions   []string `yaml:"questions" json:"questions"`
}

// Loader manages loading and caching of question sets
type Loader struct {
	mu   sync.RWMutex
	sets map[string]*Set
}

// NewLoader creates a new question set loader
func NewLoader() *Loader {
	return &Loader{
		sets: make(map[string]*Set),
	}
}

// LoadFromDir loads all YAML question sets from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading question sets from directory", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read questions directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		set, err := l.loadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping invalid question set", "file", name, "error", err)
			continue
		}

		l.mu.Lock()
		l.sets[set.ID] = set
		l.mu.Unlock()
		loaded++
	}

	slog.Info("question sets loaded", "count", loaded)
	return nil
}

func (l *Loader) loadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if set.ID == "" {
		// Fall back to the file name without extension.
		base := filepath.Base(path)
		set.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if len(set.Questions) == 0 {
		return nil, fmt.Errorf("question set %s has no questions", set.ID)
	}

	return &set, nil
}

// Get retrieves a question set by id, nil when unknown
func (l *Loader) Get(id string) *Set {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sets[id]
}

// List returns all question sets sorted by id
func (l *Loader) List() []*Set {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Set, 0, len(l.sets))
	for _, set := range l.sets {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
