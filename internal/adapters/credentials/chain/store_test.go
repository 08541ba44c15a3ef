package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/bnema/exchange-dash/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenKey = "api/token"

func newChain(t *testing.T) (*Store, *mocks.MockCredentialStore, *mocks.MockCredentialStore) {
	t.Helper()

	primary := mocks.NewMockCredentialStore(t)
	fallback := mocks.NewMockCredentialStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	return store, primary, fallback
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, mocks.NewMockCredentialStore(t))
	require.ErrorIs(t, err, errNilPrimary)

	_, err = NewStore(mocks.NewMockCredentialStore(t), nil)
	require.ErrorIs(t, err, errNilFallback)
}

func TestStoreGetPrefersPrimary(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", errors.New("pass command unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetKeepsBothCauses(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", errors.New("gpg failed")).Once()
	fallback.EXPECT().Get(mock.Anything, tokenKey).Return("", ports.ErrCredentialNotFound).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, ports.ErrCredentialNotFound)
	assert.ErrorContains(t, err, "gpg failed")
}

func TestStoreGetStopsOnCancellation(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, tokenKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStorePutFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), tokenKey, "tok"))
}

func TestStorePutSkipsFallbackOnSuccess(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Put(mock.Anything, tokenKey, "tok").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), tokenKey, "tok"))
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), tokenKey))
}

func TestStoreDeleteFailsOnlyWhenBothFail(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Delete(mock.Anything, tokenKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, tokenKey).Return(errors.New("read-only filesystem")).Once()

	err := store.Delete(context.Background(), tokenKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "read-only filesystem")
}
