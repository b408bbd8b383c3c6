package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

func TestFileBindingRepository(t *testing.T) {
	repo, err := NewFileBindingRepository(t.TempDir())
	require.NoError(t, err)

	runBindingRepositoryTests(t, repo)
}

func TestFileBindingRepository_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewFileBindingRepository(dir)
	require.NoError(t, err)

	_, err = repo.CreateAccount(ctx, "u1")
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, "u2")
	require.NoError(t, err)
	_, err = repo.ClaimOrVerify(ctx, "u1", "dev-A")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, bindingsFileName))
	require.NoError(t, err)

	reloaded, err := NewFileBindingRepository(dir)
	require.NoError(t, err)

	binding, err := reloaded.GetBinding(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "dev-A", binding.Fingerprint)

	binding, err = reloaded.GetBinding(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, binding.IsBound())

	result, err := reloaded.ClaimOrVerify(ctx, "u1", "dev-B")
	require.NoError(t, err)
	assert.Equal(t, ClaimConflict, result)
}

func TestFileBindingRepository_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, bindingsFileName), nil, 0644))

	repo, err := NewFileBindingRepository(dir)
	require.NoError(t, err)

	_, err = repo.GetBinding(context.Background(), "u1")
	assert.True(t, gateerrors.IsCode(err, gateerrors.ErrCodeAccountNotFound))
}

func TestFileBindingRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, bindingsFileName), []byte("{not json"), 0644))

	_, err := NewFileBindingRepository(dir)
	assert.Error(t, err)
}

func TestFileBindingRepository_WriteFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewFileBindingRepository(dir)
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, "u1")
	require.NoError(t, err)

	// point the repository at a directory that no longer exists
	repo.dataDir = filepath.Join(dir, "missing")

	result, err := repo.ClaimOrVerify(ctx, "u1", "dev-A")
	assert.Equal(t, ClaimUnknown, result)
	assert.True(t, gateerrors.IsCode(err, gateerrors.ErrCodeStoreUnavailable))

	binding, err := repo.GetBinding(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, binding.IsBound())
}
