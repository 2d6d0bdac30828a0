package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	logger "github.com/sirupsen/logrus"

	"signalbridge/src/model"
)

// FileStore keeps signals in a single indented JSON array.
//
// Writes go to a temporary file that is synced and renamed over the target, so a reader
// in another process sees either the old or the new collection. The mutex only
// serializes writers inside this process: when a producer and a consumer process
// rewrite the file at the same time, the last rename wins and the other change is lost.
type FileStore struct {
	mu        sync.Mutex
	path      string
	retention int
	log       *logger.Entry
}

// Compile-time interface check
var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by path. A retention of zero or less disables eviction.
func NewFileStore(path string, retention int) *FileStore {
	return &FileStore{
		path:      path,
		retention: retention,
		log:       logger.WithFields(logger.Fields{"component": "FileStore", "path": path}),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(ctx context.Context, sig model.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	signals, err := s.load()
	if err != nil {
		s.log.WithError(err).WithField("signal_id", sig.ID).Error("Failed to read signals before append")
		return err
	}

	for _, stored := range signals {
		if stored.ID == sig.ID {
			s.log.WithField("signal_id", sig.ID).Warn("Signal id already stored")
			return fmt.Errorf("%w: %s", ErrDuplicate, sig.ID)
		}
	}

	before := len(signals)
	signals = trim(append(signals, sig), s.retention)

	if err := s.write(signals); err != nil {
		s.log.WithError(err).WithField("signal_id", sig.ID).Error("Failed to save signal to file")
		return err
	}

	s.log.WithFields(logger.Fields{
		"signal_id": sig.ID,
		"count":     len(signals),
		"evicted":   before + 1 - len(signals),
	}).Debug("Signal saved to file")
	return nil
}

func (s *FileStore) ReadAll(ctx context.Context) ([]model.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

func (s *FileStore) MarkProcessed(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	signals, err := s.load()
	if err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	changed := 0
	for i := range signals {
		if _, ok := wanted[signals[i].ID]; ok && !signals[i].IsProcessed {
			signals[i].IsProcessed = true
			changed++
		}
	}

	if changed == 0 {
		return nil
	}

	if err := s.write(signals); err != nil {
		s.log.WithError(err).Error("Failed to mark signals as processed")
		return err
	}

	s.log.WithField("count", changed).Debug("Signals marked as processed")
	return nil
}

// load reads the collection. A missing or blank file is an empty collection.
func (s *FileStore) load() ([]model.Signal, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Signal{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return []model.Signal{}, nil
	}

	var signals []model.Signal
	if err := json.Unmarshal(b, &signals); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStructure, s.path, err)
	}
	if signals == nil {
		signals = []model.Signal{}
	}
	return signals, nil
}

func (s *FileStore) write(signals []model.Signal) error {
	b, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode signals: %v", ErrIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", ErrIO, dir, err)
	}

	if err := renameio.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrIO, s.path, err)
	}
	return nil
}
