package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/exchange-dash/internal/ports"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// Store keeps one credential per file below root. Writes go through a
// temporary file so a reader never sees a partial token.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	target, err := s.locate(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("credential file %q: %w", key, ports.ErrCredentialNotFound)
	case err != nil:
		return "", fmt.Errorf("read credential file %q: %w", key, err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	target, err := s.locate(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temporary credential file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("restrict credential file %q: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential file %q: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store credential file %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	target, err := s.locate(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete credential file %q: %w", key, err)
	}
	return nil
}

func (s *Store) locate(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("credential key is empty")
	}

	rel := filepath.Clean(trimmed)
	if rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid credential key %q", key)
	}

	return filepath.Join(s.root, rel), nil
}
