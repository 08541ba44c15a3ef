// Package credentials resolves the bearer token used for backend calls.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/exchange-dash/internal/ports"
)

const DefaultTokenKey = "api/token"

// TokenSource returns a token given on the command line or in the
// environment when set, and otherwise the one kept in the credential store.
type TokenSource struct {
	store    ports.CredentialStore
	key      string
	override string
}

var _ ports.TokenSource = (*TokenSource)(nil)

func NewTokenSource(store ports.CredentialStore, key string, override string) *TokenSource {
	if strings.TrimSpace(key) == "" {
		key = DefaultTokenKey
	}
	return &TokenSource{store: store, key: key, override: strings.TrimSpace(override)}
}

// Token returns an empty token, not an error, when nothing is stored.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s.override != "" {
		return s.override, nil
	}
	if s.store == nil {
		return "", nil
	}

	token, err := s.store.Get(ctx, s.key)
	switch {
	case errors.Is(err, ports.ErrCredentialNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("load api token: %w", err)
	}

	return strings.TrimSpace(token), nil
}

func (s *TokenSource) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("api token is empty")
	}
	if s.store == nil {
		return errors.New("no credential store configured")
	}

	if err := s.store.Put(ctx, s.key, token); err != nil {
		return fmt.Errorf("save api token: %w", err)
	}
	return nil
}

func (s *TokenSource) Clear(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear api token: %w", err)
	}
	return nil
}
