package ports

import (
	"context"
	"errors"
)

// ErrCredentialNotFound is returned by a CredentialStore when nothing is
// stored under the requested key.
var ErrCredentialNotFound = errors.New("credential not found")

// TokenSource supplies the bearer token for backend calls. An empty token
// means requests go out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
