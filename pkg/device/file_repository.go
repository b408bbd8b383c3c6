package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

const bindingsFileName = "device_bindings.json"

// FileBindingRepository implements BindingRepository using file-based storage
type FileBindingRepository struct {
	dataDir  string
	accounts map[string]*AccountBinding // Key: account id
	mutex    sync.RWMutex
}

// bindingData represents the structure of data stored in the JSON file
type bindingData struct {
	Accounts []*AccountBinding `json:"accounts"`
}

// NewFileBindingRepository creates a new file-based binding repository
func NewFileBindingRepository(dataDir string) (*FileBindingRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileBindingRepository{
		dataDir:  dataDir,
		accounts: make(map[string]*AccountBinding),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// ClaimOrVerify compares, sets and persists the binding while holding the
// write lock. A failed write restores the previous binding.
func (r *FileBindingRepository) ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error) {
	if err := ctx.Err(); err != nil {
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to claim device binding")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, exists := r.accounts[accountID]
	if !exists {
		return ClaimUnknown, gateerrors.AccountNotFound(accountID)
	}

	previous := *current
	result, updated := claim(previous, fingerprint, time.Now().UTC())
	if result != ClaimBound || updated == previous {
		return result, nil
	}

	*current = updated
	if err := r.save(); err != nil {
		*current = previous
		slog.Error("Failed to persist device binding", "err", err, "accountID", accountID)
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to persist device binding")
	}

	return ClaimBound, nil
}

// GetBinding retrieves the binding for an account
func (r *FileBindingRepository) GetBinding(ctx context.Context, accountID string) (AccountBinding, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	binding, exists := r.accounts[accountID]
	if !exists {
		return AccountBinding{}, gateerrors.AccountNotFound(accountID)
	}
	return *binding, nil
}

// CreateAccount registers an unbound account
func (r *FileBindingRepository) CreateAccount(ctx context.Context, accountID string) (AccountBinding, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if binding, exists := r.accounts[accountID]; exists {
		return *binding, nil
	}

	binding := &AccountBinding{AccountID: accountID}
	r.accounts[accountID] = binding

	if err := r.save(); err != nil {
		delete(r.accounts, accountID)
		return AccountBinding{}, gateerrors.StoreUnavailable(err, "failed to save account")
	}

	return *binding, nil
}

// ResetBinding clears the bound fingerprint of an account
func (r *FileBindingRepository) ResetBinding(ctx context.Context, accountID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, exists := r.accounts[accountID]
	if !exists {
		return gateerrors.AccountNotFound(accountID)
	}

	previous := *current
	*current = AccountBinding{AccountID: accountID}
	if err := r.save(); err != nil {
		*current = previous
		return gateerrors.StoreUnavailable(err, "failed to reset device binding")
	}

	return nil
}

// load reads data from the JSON file
func (r *FileBindingRepository) load() error {
	filePath := filepath.Join(r.dataDir, bindingsFileName)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var stored bindingData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.accounts = make(map[string]*AccountBinding, len(stored.Accounts))
	for _, binding := range stored.Accounts {
		r.accounts[binding.AccountID] = binding
	}

	return nil
}

// save writes data to the JSON file. Caller must hold the write lock.
func (r *FileBindingRepository) save() error {
	accounts := make([]*AccountBinding, 0, len(r.accounts))
	for _, binding := range r.accounts {
		accounts = append(accounts, binding)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountID < accounts[j].AccountID
	})

	jsonData, err := json.MarshalIndent(bindingData{Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, bindingsFileName+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, bindingsFileName)
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
