package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

const lockRetryDelay = 20 * time.Millisecond

// FileVisitStore keeps every day in one JSON document. Updates are
// read-modify-write under an in-process mutex plus an advisory lock file, and
// the document is replaced atomically so readers never see a partial write.
type FileVisitStore struct {
	path     string
	mu       sync.Mutex
	lock     *flock.Flock
	readFile func(string) ([]byte, error)
}

func NewFileVisitStore(path string) (*FileVisitStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create visits directory: %w", err)
		}
	}

	return &FileVisitStore{
		path:     path,
		lock:     flock.New(path + ".lock"),
		readFile: os.ReadFile,
	}, nil
}

func (s *FileVisitStore) RecordVisit(ctx context.Context, date, path, referrer string) error {
	return s.update(ctx, func(store models.VisitsStore) bool {
		record, ok := store[date]
		if !ok {
			record = models.NewVisitRecord(date)
			store[date] = record
		}
		record.Add(path, referrer)
		return true
	})
}

func (s *FileVisitStore) GetAll(ctx context.Context) (models.VisitsStore, error) {
	store, _, err := s.load()
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileVisitStore) Prune(ctx context.Context, before string) (int, error) {
	removed := 0
	err := s.update(ctx, func(store models.VisitsStore) bool {
		for date := range store {
			if date < before {
				delete(store, date)
				removed++
			}
		}
		return removed > 0
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Save replaces the whole document.
func (s *FileVisitStore) Save(ctx context.Context, store models.VisitsStore) error {
	return s.update(ctx, func(current models.VisitsStore) bool {
		for date := range current {
			delete(current, date)
		}
		for date, record := range store {
			current[date] = record
		}
		return true
	})
}

func (s *FileVisitStore) Close() error {
	return s.lock.Close()
}

// update runs fn against the current document and writes it back when fn
// reports a change.
func (s *FileVisitStore) update(ctx context.Context, fn func(models.VisitsStore) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock visits file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock visits file: %w", context.Cause(ctx))
	}
	defer s.lock.Unlock()

	store, corrupt, err := s.load()
	if err != nil {
		return err
	}
	if corrupt {
		s.quarantine()
	}

	if !fn(store) {
		return nil
	}

	return s.write(store)
}

// load reads the document. Missing and corrupt files both yield an empty
// store; corrupt is true only when a file existed but could not be decoded.
// Any other read failure is returned so callers never overwrite a document
// they could not see.
func (s *FileVisitStore) load() (models.VisitsStore, bool, error) {
	store := models.VisitsStore{}

	data, err := s.readFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, false, nil
		}
		return nil, false, fmt.Errorf("read visits file: %w", err)
	}

	if len(data) == 0 {
		return store, false, nil
	}

	if err := json.Unmarshal(data, &store); err != nil {
		logrus.WithError(err).WithField("path", s.path).Warn("visits file is corrupt, treating as empty")
		return models.VisitsStore{}, true, nil
	}

	for date, record := range store {
		if record == nil {
			delete(store, date)
		}
	}

	return store, false, nil
}

// quarantine keeps a copy of an undecodable document before it is replaced.
func (s *FileVisitStore) quarantine() {
	backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, backup); err != nil {
		logrus.WithError(err).WithField("path", s.path).Warn("failed to move corrupt visits file aside")
		return
	}
	logrus.WithField("backup", backup).Warn("moved corrupt visits file aside")
}

func (s *FileVisitStore) write(store models.VisitsStore) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode visits: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write visits file: %w", err)
	}
	return nil
}
