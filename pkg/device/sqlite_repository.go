package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gateerrors "github.com/tendant/devicegate/pkg/errors"
	_ "modernc.org/sqlite"
)

const sqliteFileName = "device_bindings.db"

// SQLiteBindingRepository implements BindingRepository using an embedded
// SQLite database
type SQLiteBindingRepository struct {
	db *sql.DB
}

// NewSQLiteBindingRepository opens (or creates) the database at path and
// ensures the accounts table exists
func NewSQLiteBindingRepository(path string) (*SQLiteBindingRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite has a single writer; one connection keeps writers queued in
	// process instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id                       TEXT PRIMARY KEY,
			bound_device_fingerprint TEXT,
			device_bound_at          TEXT,
			created_at               TEXT NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	slog.Info("SQLite binding store initialized", "path", path)
	return &SQLiteBindingRepository{db: db}, nil
}

// Close closes the underlying database
func (r *SQLiteBindingRepository) Close() error {
	return r.db.Close()
}

// ClaimOrVerify claims with one conditional UPDATE. Only when it matches no
// row is the account's existence probed, to tell a conflict from an unknown
// account.
func (r *SQLiteBindingRepository) ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error) {
	query := `
		UPDATE accounts
		SET bound_device_fingerprint = ?2,
			device_bound_at = COALESCE(device_bound_at, ?3)
		WHERE id = ?1
			AND (bound_device_fingerprint IS NULL
				OR bound_device_fingerprint = ''
				OR bound_device_fingerprint = ?2)
		RETURNING bound_device_fingerprint
	`

	var claimed string
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := r.db.QueryRowContext(ctx, query, accountID, fingerprint, now).Scan(&claimed)
	switch {
	case err == nil:
		return ClaimBound, nil
	case !errors.Is(err, sql.ErrNoRows):
		slog.Error("Failed to claim device binding", "err", err, "accountID", accountID)
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to claim device binding")
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = ?)`, accountID).Scan(&exists)
	if err != nil {
		slog.Error("Failed to probe account", "err", err, "accountID", accountID)
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to claim device binding")
	}
	if !exists {
		return ClaimUnknown, gateerrors.AccountNotFound(accountID)
	}
	return ClaimConflict, nil
}

// GetBinding retrieves the binding for an account
func (r *SQLiteBindingRepository) GetBinding(ctx context.Context, accountID string) (AccountBinding, error) {
	query := `
		SELECT id, bound_device_fingerprint, device_bound_at
		FROM accounts
		WHERE id = ?
	`

	var binding AccountBinding
	var fingerprint, boundAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&binding.AccountID, &fingerprint, &boundAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AccountBinding{}, gateerrors.AccountNotFound(accountID)
		}
		slog.Error("Failed to get device binding", "err", err, "accountID", accountID)
		return AccountBinding{}, gateerrors.StoreUnavailable(err, "failed to get device binding")
	}

	binding.Fingerprint = fingerprint.String
	if boundAt.Valid && boundAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, boundAt.String)
		if err != nil {
			return AccountBinding{}, gateerrors.StoreUnavailable(err, "corrupt device_bound_at")
		}
		binding.BoundAt = t
	}

	return binding, nil
}

// CreateAccount inserts an unbound account row
func (r *SQLiteBindingRepository) CreateAccount(ctx context.Context, accountID string) (AccountBinding, error) {
	query := `
		INSERT INTO accounts (id, created_at)
		VALUES (?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, query, accountID, now); err != nil {
		slog.Error("Failed to create account", "err", err, "accountID", accountID)
		return AccountBinding{}, gateerrors.StoreUnavailable(err, "failed to create account")
	}

	return r.GetBinding(ctx, accountID)
}

// ResetBinding clears the bound fingerprint of an account
func (r *SQLiteBindingRepository) ResetBinding(ctx context.Context, accountID string) error {
	query := `
		UPDATE accounts
		SET bound_device_fingerprint = NULL,
			device_bound_at = NULL
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		slog.Error("Failed to reset device binding", "err", err, "accountID", accountID)
		return gateerrors.StoreUnavailable(err, "failed to reset device binding")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateerrors.AccountNotFound(accountID)
	}

	slog.Info("Device binding reset", "accountID", accountID)
	return nil
}
