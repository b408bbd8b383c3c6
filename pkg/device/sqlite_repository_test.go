package device

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

func newTestSQLiteRepository(t *testing.T, path string) *SQLiteBindingRepository {
	repo, err := NewSQLiteBindingRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteBindingRepository(t *testing.T) {
	repo := newTestSQLiteRepository(t, filepath.Join(t.TempDir(), sqliteFileName))
	runBindingRepositoryTests(t, repo)
}

func TestSQLiteBindingRepository_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", sqliteFileName)

	repo, err := NewSQLiteBindingRepository(path)
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, "acct-1")
	require.NoError(t, err)
	result, err := repo.ClaimOrVerify(ctx, "acct-1", "dev-A")
	require.NoError(t, err)
	require.Equal(t, ClaimBound, result)
	require.NoError(t, repo.Close())

	reopened := newTestSQLiteRepository(t, path)
	binding, err := reopened.GetBinding(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "dev-A", binding.Fingerprint)

	result, err = reopened.ClaimOrVerify(ctx, "acct-1", "dev-B")
	require.NoError(t, err)
	assert.Equal(t, ClaimConflict, result)
}

func TestSQLiteBindingRepository_Closed(t *testing.T) {
	repo, err := NewSQLiteBindingRepository(filepath.Join(t.TempDir(), sqliteFileName))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = repo.ClaimOrVerify(context.Background(), "acct-1", "dev-A")
	assert.True(t, gateerrors.IsCode(err, gateerrors.ErrCodeStoreUnavailable))
}
