// Package filestore provides a MemoryStore persisted as a single JSON file
// holding every thread's history:
//
//	{"<thread id>": [{"role": "user", "content": "hi", "timestamp": "..."}, ...]}
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so a crash never leaves a half-written document.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/memory"
)

// Options configures the file store.
type Options struct {
	// MaxItems caps the messages kept per thread. Zero keeps everything.
	MaxItems int
	// Perm is the mode of the created file. Defaults to 0o600.
	Perm fs.FileMode
}

// Store is a file-backed core.MemoryStore. Access within one process is
// serialized by a mutex; the file must not be shared between processes.
type Store struct {
	mu       sync.Mutex
	path     string
	maxItems int
	perm     fs.FileMode
}

var _ core.MemoryStore = (*Store)(nil)

// New creates a store for path. The file is created on first save.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	if path == "" {
		return nil, core.NewConfigurationError("file store path is required")
	}

	opts := Options{Perm: 0o600}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{path: path, maxItems: opts.MaxItems, perm: opts.Perm}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the thread's history. A missing file or thread is empty; an
// undecodable document is a configuration error.
func (s *Store) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	return core.FromEnvelopes(doc[threadID])
}

// Save replaces the thread's history and rewrites the file.
func (s *Store) Save(ctx context.Context, threadID string, history []core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	kept := memory.Truncate(history, s.maxItems)
	envs := make([]core.Envelope, len(kept))
	for i, m := range kept {
		envs[i] = core.ToEnvelope(m)
	}
	doc[threadID] = envs

	return s.write(doc)
}

func (s *Store) read() (map[string][]core.Envelope, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]core.Envelope{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read memory file %s: %w", s.path, err)
	}

	doc := map[string][]core.Envelope{}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &core.Error{Kind: core.ErrConfiguration, Message: "malformed memory", Cause: err}
	}

	return doc, nil
}

func (s *Store) write(doc map[string][]core.Envelope) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create memory dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp memory file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp memory file: %w", err)
	}

	if err := os.Chmod(tmpName, s.perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod memory file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace memory file %s: %w", s.path, err)
	}

	return nil
}
