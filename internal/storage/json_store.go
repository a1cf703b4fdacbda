package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/dayquote/internal/models"
)

// jsonDocument is the on-disk layout of a JSON store
type jsonDocument struct {
	Version  int                       `json:"version"`
	Values   map[string]string         `json:"values"`
	Triggers map[string]models.Trigger `json:"triggers"`
}

// JSONStore keeps everything in a single JSON file, rewritten on every change.
type JSONStore struct {
	path string
	mu   sync.Mutex
	doc  *jsonDocument
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.create(); err != nil {
		return err
	}
	if _, err := EnsureInstallID(s); err != nil {
		return fmt.Errorf("failed to create install id: %w", err)
	}
	return nil
}

func (s *JSONStore) create() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		// Existing file: keep its contents
		return s.loadLocked()
	}

	s.doc = &jsonDocument{
		Version:  1,
		Values:   make(map[string]string),
		Triggers: make(map[string]models.Trigger),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *JSONStore) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	if doc.Triggers == nil {
		doc.Triggers = make(map[string]models.Trigger)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes via a temp file and rename so readers never see a partial document.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetValue(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", false, ErrNotLoaded
	}
	v, ok := s.doc.Values[key]
	return v, ok, nil
}

func (s *JSONStore) SetValue(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	s.doc.Values[key] = value
	return s.save()
}

func (s *JSONStore) GetAllValues() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNotLoaded
	}
	out := make(map[string]string, len(s.doc.Values))
	for k, v := range s.doc.Values {
		out[k] = v
	}
	return out, nil
}

func (s *JSONStore) AddTrigger(t models.Trigger) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	if _, exists := s.doc.Triggers[t.ID]; exists {
		return fmt.Errorf("trigger %s already exists", t.ID)
	}
	s.doc.Triggers[t.ID] = t
	return s.save()
}

// GetAllTriggers returns triggers ordered by time of day, then creation.
func (s *JSONStore) GetAllTriggers() ([]models.Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNotLoaded
	}
	triggers := make([]models.Trigger, 0, len(s.doc.Triggers))
	for _, t := range s.doc.Triggers {
		triggers = append(triggers, t)
	}
	sort.Slice(triggers, func(i, j int) bool {
		a, b := triggers[i], triggers[j]
		if a.At() != b.At() {
			return a.At().Minutes() < b.At().Minutes()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return triggers, nil
}

func (s *JSONStore) DeleteAllTriggers() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0, ErrNotLoaded
	}
	n := len(s.doc.Triggers)
	s.doc.Triggers = make(map[string]models.Trigger)
	return n, s.save()
}

func (s *JSONStore) MarkTriggerFired(id, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	t, ok := s.doc.Triggers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTriggerNotFound, id)
	}
	t.LastFiredDay = day
	s.doc.Triggers[id] = t
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
