// Package favorites persists the user's saved stations as one ordered
// JSON list. Order is user-significant (drag-reorder); ids are unique.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrVISKman11/AppTiempo/internal/models"
)

// Store is a file-backed favorites list. Every mutation is a
// read-modify-write under one mutex, so concurrent mutations from this
// process never lose updates. Cross-process locking is not attempted.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the given file path. A missing file
// reads as an empty list.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns the favorites in stored order.
func (s *Store) List() ([]models.FavoriteStation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Add inserts a station at the end of the list. If the id already
// exists, the existing entry is updated in place: the list length and
// order are unchanged and only the display name is refreshed.
func (s *Store) Add(fav models.FavoriteStation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == fav.ID {
			list[i].Name = fav.Name
			return s.saveLocked(list)
		}
	}
	list = append(list, fav)
	return s.saveLocked(list)
}

// Remove deletes the entry with the given id. Removing an id that is not
// present is a no-op.
func (s *Store) Remove(stationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	out := list[:0]
	for _, f := range list {
		if f.ID != stationID {
			out = append(out, f)
		}
	}
	return s.saveLocked(out)
}

// UpdateAll replaces the whole list, preserving the given order. Used to
// persist a drag-reorder. Duplicate ids keep their first occurrence.
func (s *Store) UpdateAll(list []models.FavoriteStation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(list))
	deduped := make([]models.FavoriteStation, 0, len(list))
	for _, f := range list {
		if _, ok := seen[f.ID]; ok {
			continue
		}
		seen[f.ID] = struct{}{}
		deduped = append(deduped, f)
	}
	return s.saveLocked(deduped)
}

// IsFavorite reports whether the station id is saved.
func (s *Store) IsFavorite(stationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	for _, f := range list {
		if f.ID == stationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) loadLocked() ([]models.FavoriteStation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.FavoriteStation{}, nil
		}
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	var list []models.FavoriteStation
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}
	return list, nil
}

func (s *Store) saveLocked(list []models.FavoriteStation) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create favorites dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace favorites: %w", err)
	}
	return nil
}
