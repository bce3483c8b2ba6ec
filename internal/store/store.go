package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"github.com/san-kum/marblejar/internal/marble"
)

var (
	// ErrNotExist means nothing has been saved yet. Callers treat it as an empty history.
	ErrNotExist = errors.New("store: no saved history")

	// ErrCorrupt means the history file could not be decoded. The file has been moved aside.
	ErrCorrupt = errors.New("store: corrupt history")
)

// Store reads and writes the marble history as a single JSON document.
type Store struct {
	baseDir  string
	fileName string
	now      func() time.Time
}

func New(baseDir, fileName string) *Store {
	return &Store{baseDir: baseDir, fileName: fileName, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Path() string {
	return filepath.Join(s.baseDir, s.fileName)
}

// Load returns the saved records in their original order. A corrupt file is moved
// aside so the next Save cannot overwrite it.
func (s *Store) Load() ([]marble.Record, error) {
	return s.load(true)
}

// Read is Load without side effects: a corrupt file is reported but left in place.
func (s *Store) Read() ([]marble.Record, error) {
	return s.load(false)
}

func (s *Store) load(quarantine bool) ([]marble.Record, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []marble.Record{}, ErrNotExist
		}
		return []marble.Record{}, fmt.Errorf("store: read %s: %w", path, err)
	}

	var h marble.History
	if err := json.Unmarshal(data, &h); err != nil {
		if !quarantine {
			return []marble.Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		aside := path + ".corrupt-" + strconv.FormatInt(s.now().UnixMilli(), 10)
		if rerr := os.Rename(path, aside); rerr != nil {
			return []marble.Record{}, fmt.Errorf("%w: %w (keeping %s: %v)", ErrCorrupt, err, path, rerr)
		}
		return []marble.Record{}, fmt.Errorf("%w: %w (moved to %s)", ErrCorrupt, err, aside)
	}
	if h.Marbles == nil {
		h.Marbles = []marble.Record{}
	}
	return h.Marbles, nil
}

// Save replaces the history file with records. The previous file stays intact unless
// the new one was written completely.
func (s *Store) Save(records []marble.Record) error {
	if records == nil {
		records = []marble.Record{}
	}
	data, err := json.Marshal(marble.History{Marbles: records})
	if err != nil {
		return fmt.Errorf("store: encode history: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("store: create %s: %w", s.baseDir, err)
	}
	if err := renameio.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("store: write %s: %w", s.Path(), err)
	}
	return nil
}
