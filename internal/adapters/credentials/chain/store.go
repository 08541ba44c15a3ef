package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/exchange-dash/internal/adapters/credentials/file"
	passstore "github.com/bnema/exchange-dash/internal/adapters/credentials/pass"
	"github.com/bnema/exchange-dash/internal/ports"
)

// Store reads and writes through primary, falling back to fallback when
// primary fails for any reason other than cancellation.
type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimary  = errors.New("primary credential store is nil")
	errNilFallback = errors.New("fallback credential store is nil")
)

func NewStore(primary ports.CredentialStore, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimary
	}
	if fallback == nil {
		return nil, errNilFallback
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewPassWithFileFallback prefers the password-store and keeps a file copy
// under dir when pass is missing or broken.
func NewPassWithFileFallback(prefix string, dir string) (*Store, error) {
	return NewStore(passstore.NewStore(prefix), filestore.NewStore(dir))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil || cancelled(err) {
		return value, err
	}

	value, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return value, nil
	}

	return "", fmt.Errorf("get credential %q: primary: %w; fallback: %w", key, err, fallbackErr)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil || cancelled(err) {
		return err
	}

	if fallbackErr := s.fallback.Put(ctx, key, value); fallbackErr != nil {
		return fmt.Errorf("put credential %q: primary: %w; fallback: %w", key, err, fallbackErr)
	}
	return nil
}

// Delete removes key from both backends so a value written to the fallback
// while the primary was down does not resurface later.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if cancelled(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	switch {
	case err == nil || fallbackErr == nil:
		return nil
	default:
		return fmt.Errorf("delete credential %q: primary: %w; fallback: %w", key, err, fallbackErr)
	}
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
