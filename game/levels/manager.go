package levels

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

const (
	levelExt     = ".txt"
	manifestFile = "levels.yaml"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// manifest is the optional levels.yaml describing play order and names
type manifest struct {
	Levels []manifestEntry `yaml:"levels"`
}

type manifestEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Manager handles level loading and caching
type Manager struct {
	dir    string
	logger *slog.Logger

	sources  map[string]string
	manifest *manifest
	mu       sync.RWMutex
}

// NewManager creates a new level manager rooted at dir
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("levels directory does not exist: %s", dir)
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		dir:     dir,
		logger:  logger.With("component", "levels"),
		sources: make(map[string]string),
	}

	if err := m.loadManifest(); err != nil {
		return nil, err
	}

	return m, nil
}

// Dir returns the directory the manager reads from
func (m *Manager) Dir() string {
	return m.dir
}

// Source returns the raw map text of a level
func (m *Manager) Source(id string) (string, error) {
	id = normalizeID(id)
	if !validID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrLevelNotFound, id)
	}

	m.mu.RLock()
	if text, ok := m.sources[id]; ok {
		m.mu.RUnlock()
		return text, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if text, ok := m.sources[id]; ok {
		return text, nil
	}

	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrLevelNotFound, id)
		}
		return "", fmt.Errorf("failed to read level %s: %w", id, err)
	}

	text := string(data)
	m.sources[id] = text
	return text, nil
}

// Load parses a fresh grid for the level. Every call returns a new grid.
func (m *Manager) Load(id string) (*engine.Grid, error) {
	text, err := m.Source(id)
	if err != nil {
		return nil, err
	}

	grid, err := engine.LoadMapString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidLevel, normalizeID(id), err)
	}
	return grid, nil
}

// Info describes a single level
func (m *Manager) Info(id string) (*service.LevelInfo, error) {
	grid, err := m.Load(id)
	if err != nil {
		return nil, err
	}
	return m.describe(normalizeID(id), grid), nil
}

// List returns information about all loadable levels in play order.
// Levels that fail to parse are skipped.
func (m *Manager) List() ([]*service.LevelInfo, error) {
	ids, err := m.Order()
	if err != nil {
		return nil, err
	}

	levels := make([]*service.LevelInfo, 0, len(ids))
	for _, id := range ids {
		grid, err := m.Load(id)
		if err != nil {
			m.logger.Warn("skipping level", "id", id, "error", err)
			continue
		}
		levels = append(levels, m.describe(id, grid))
	}
	return levels, nil
}

// Order returns level ids in play order: manifest entries first, then the
// remaining files sorted by name.
func (m *Manager) Order() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	onDisk := make(map[string]bool)
	var rest []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), levelExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), levelExt)
		onDisk[id] = true
		rest = append(rest, id)
	}
	sort.Strings(rest)

	m.mu.RLock()
	man := m.manifest
	m.mu.RUnlock()

	ids := make([]string, 0, len(rest))
	seen := make(map[string]bool)
	if man != nil {
		for _, e := range man.Levels {
			if onDisk[e.ID] && !seen[e.ID] {
				ids = append(ids, e.ID)
				seen[e.ID] = true
			}
		}
	}
	for _, id := range rest {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// First returns the first level in play order
func (m *Manager) First() (string, error) {
	ids, err := m.Order()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no levels in %s", ErrLevelNotFound, m.dir)
	}
	return ids[0], nil
}

// Next returns the level that follows id in play order. ok is false when id
// is the last level or unknown.
func (m *Manager) Next(id string) (string, bool) {
	ids, err := m.Order()
	if err != nil {
		return "", false
	}
	id = normalizeID(id)
	for i, candidate := range ids {
		if candidate == id && i+1 < len(ids) {
			return ids[i+1], true
		}
	}
	return "", false
}

// Save validates text as a playable level and writes it to disk
func (m *Manager) Save(id, text string) error {
	id = normalizeID(id)
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: id %q must contain only letters, digits, '-' or '_'", ErrInvalidLevel, id)
	}

	grid, err := engine.LoadMapString(text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	if err := ValidatePlayable(grid); err != nil {
		return err
	}

	encoded := engine.EncodeMap(grid)
	if err := os.WriteFile(m.path(id), []byte(encoded), 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.sources[id] = encoded
	m.mu.Unlock()

	m.logger.Info("level saved", "id", id, "rows", grid.Rows(), "cols", grid.Cols())
	return nil
}

// Invalidate drops a single level from the cache
func (m *Manager) Invalidate(id string) {
	m.mu.Lock()
	delete(m.sources, normalizeID(id))
	m.mu.Unlock()
}

// Refresh clears the cache and rereads the manifest
func (m *Manager) Refresh() error {
	m.mu.Lock()
	m.sources = make(map[string]string)
	m.mu.Unlock()

	return m.loadManifest()
}

func (m *Manager) loadManifest() error {
	data, err := os.ReadFile(filepath.Join(m.dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			m.mu.Lock()
			m.manifest = nil
			m.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", manifestFile, err)
	}

	var man manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return fmt.Errorf("failed to parse %s: %w", manifestFile, err)
	}

	m.mu.Lock()
	m.manifest = &man
	m.mu.Unlock()
	return nil
}

func (m *Manager) describe(id string, grid *engine.Grid) *service.LevelInfo {
	info := &service.LevelInfo{
		ID:           id,
		Name:         id,
		Rows:         grid.Rows(),
		Cols:         grid.Cols(),
		Crates:       len(grid.Crates()),
		Destinations: len(grid.Destinations()),
		Player:       grid.Player(),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.manifest != nil {
		for _, e := range m.manifest.Levels {
			if e.ID == id {
				if e.Name != "" {
					info.Name = e.Name
				}
				info.Description = e.Description
				break
			}
		}
	}
	return info
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+levelExt)
}

func normalizeID(id string) string {
	return strings.TrimSuffix(strings.TrimSpace(id), levelExt)
}
