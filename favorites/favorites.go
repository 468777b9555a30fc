// Package favorites keeps the user's saved movies: an ordered set of movie
// snapshots keyed by TMDB id, optionally persisted to a JSON file.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/moviedeck/tmdb"
)

const fileVersion = 1

// Entry is a saved movie snapshot
type Entry struct {
	Movie   tmdb.Movie `json:"movie"`
	AddedAt time.Time  `json:"added_at"`
}

type fileFormat struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Store is an ordered set of favorite movies, safe for concurrent use
type Store struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []Entry
	index   map[int64]int
}

// New creates an in-memory store
func New(logger zerolog.Logger) *Store {
	return &Store{
		logger: logger,
		index:  make(map[int64]int),
	}
}

// Open creates a store backed by the file at path, loading it if it exists.
// Every change is written back to the file.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	s := New(logger)
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug().Str("path", path).Msg("No favorites file yet")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites file: %w", err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse favorites file %s: %w", path, err)
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("favorites file %s has unsupported version %d", path, f.Version)
	}

	for _, e := range f.Entries {
		if _, dup := s.index[e.Movie.ID]; dup {
			continue
		}
		s.index[e.Movie.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}

	logger.Debug().Str("path", path).Int("count", len(s.entries)).Msg("Loaded favorites")
	return s, nil
}

// Add appends a movie. It reports false when the movie is already saved.
// A failed save leaves the store unchanged.
func (s *Store) Add(movie tmdb.Movie) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[movie.ID]; ok {
		return false, nil
	}

	s.index[movie.ID] = len(s.entries)
	s.entries = append(s.entries, Entry{Movie: movie, AddedAt: time.Now().UTC()})

	if err := s.saveLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		delete(s.index, movie.ID)
		return false, err
	}

	s.logger.Info().Int64("movie_id", movie.ID).Str("title", movie.Title).Msg("Added favorite")
	return true, nil
}

// Remove deletes a movie. It reports false when the movie was not saved.
// A failed save leaves the store unchanged.
func (s *Store) Remove(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}

	prev := slices.Clone(s.entries)
	s.entries = slices.Delete(s.entries, i, i+1)
	s.reindexLocked()

	if err := s.saveLocked(); err != nil {
		s.entries = prev
		s.reindexLocked()
		return false, err
	}

	s.logger.Info().Int64("movie_id", id).Msg("Removed favorite")
	return true, nil
}

// Contains reports whether a movie is saved
func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Get returns the saved snapshot of a movie
func (s *Store) Get(id int64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// List returns the saved entries in insertion order
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Movies returns the saved movies in insertion order
func (s *Store) Movies() []tmdb.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movies := make([]tmdb.Movie, 0, len(s.entries))
	for _, e := range s.entries {
		movies = append(movies, e.Movie)
	}
	return movies
}

// Len returns the number of saved movies
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// replace swaps stored snapshots for fresher ones, keeping order and AddedAt
func (s *Store) replace(movies map[int64]tmdb.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, movie := range movies {
		if i, ok := s.index[id]; ok {
			s.entries[i].Movie = movie
		}
	}

	return s.saveLocked()
}

func (s *Store) reindexLocked() {
	clear(s.index)
	for i, e := range s.entries {
		s.index[e.Movie.ID] = i
	}
}

// saveLocked writes the store through a temp file and rename
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(fileFormat{Version: fileVersion, Entries: s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".favorites-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}

	return nil
}
