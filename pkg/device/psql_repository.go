package device

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

// PostgresBindingRepository implements BindingRepository using PostgreSQL
type PostgresBindingRepository struct {
	db DBTX
}

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// NewPostgresBindingRepository creates a new PostgreSQL binding repository
func NewPostgresBindingRepository(db DBTX) *PostgresBindingRepository {
	return &PostgresBindingRepository{db: db}
}

// The conditional UPDATE takes the row lock. A concurrent claimant blocks on
// it and re-evaluates the guard against the committed value, so a second
// fingerprint never matches once the first one is written. The EXISTS probe
// shares the statement snapshot and separates "conflict" from "no account".
const claimOrVerifyQuery = `
	WITH claimed AS (
		UPDATE accounts
		SET bound_device_fingerprint = $2,
			device_bound_at = COALESCE(device_bound_at, NOW())
		WHERE id = $1
			AND (bound_device_fingerprint IS NULL
				OR bound_device_fingerprint = ''
				OR bound_device_fingerprint = $2)
		RETURNING bound_device_fingerprint
	)
	SELECT
		(SELECT bound_device_fingerprint FROM claimed) AS claimed_fingerprint,
		EXISTS (SELECT 1 FROM accounts WHERE id = $1) AS account_exists
`

// ClaimOrVerify binds fingerprint to the account if it is unbound, or checks
// it against the existing binding. One statement, one round trip.
func (r *PostgresBindingRepository) ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error) {
	var claimed sql.NullString
	var exists bool

	err := r.db.QueryRow(ctx, claimOrVerifyQuery, accountID, fingerprint).Scan(&claimed, &exists)
	if err != nil {
		slog.Error("Failed to claim device binding", "err", err, "accountID", accountID)
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to claim device binding")
	}

	switch {
	case claimed.Valid && claimed.String == fingerprint:
		return ClaimBound, nil
	case !exists:
		return ClaimUnknown, gateerrors.AccountNotFound(accountID)
	default:
		return ClaimConflict, nil
	}
}

// GetBinding retrieves the binding for an account
func (r *PostgresBindingRepository) GetBinding(ctx context.Context, accountID string) (AccountBinding, error) {
	query := `
		SELECT id, bound_device_fingerprint, device_bound_at
		FROM accounts
		WHERE id = $1
	`

	var binding AccountBinding
	var fingerprint sql.NullString
	var boundAt sql.NullTime
	err := r.db.QueryRow(ctx, query, accountID).Scan(&binding.AccountID, &fingerprint, &boundAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Debug("Account not found", "accountID", accountID)
			return AccountBinding{}, gateerrors.AccountNotFound(accountID)
		}
		slog.Error("Failed to get device binding", "err", err, "accountID", accountID)
		return AccountBinding{}, gateerrors.StoreUnavailable(err, "failed to get device binding")
	}

	if fingerprint.Valid {
		binding.Fingerprint = fingerprint.String
	}
	if boundAt.Valid {
		binding.BoundAt = boundAt.Time.UTC()
	}

	return binding, nil
}

// CreateAccount inserts an unbound account row
func (r *PostgresBindingRepository) CreateAccount(ctx context.Context, accountID string) (AccountBinding, error) {
	query := `
		INSERT INTO accounts (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, accountID); err != nil {
		slog.Error("Failed to create account", "err", err, "accountID", accountID)
		return AccountBinding{}, gateerrors.StoreUnavailable(err, "failed to create account")
	}

	return r.GetBinding(ctx, accountID)
}

// ResetBinding clears the bound fingerprint of an account
func (r *PostgresBindingRepository) ResetBinding(ctx context.Context, accountID string) error {
	query := `
		UPDATE accounts
		SET bound_device_fingerprint = NULL,
			device_bound_at = NULL
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, accountID)
	if err != nil {
		slog.Error("Failed to reset device binding", "err", err, "accountID", accountID)
		return gateerrors.StoreUnavailable(err, "failed to reset device binding")
	}
	if tag.RowsAffected() == 0 {
		return gateerrors.AccountNotFound(accountID)
	}

	slog.Info("Device binding reset", "accountID", accountID)
	return nil
}
