package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// MemorySecretRepository keeps secrets in a map guarded by a mutex (NOT FOR PRODUCTION).
type MemorySecretRepository struct {
	secrets map[string][]models.SecretRecord
	mutex   sync.RWMutex
}

func NewMemorySecretRepository() *MemorySecretRepository {
	return &MemorySecretRepository{
		secrets: make(map[string][]models.SecretRecord),
	}
}

var _ repository.SecretRepository = (*MemorySecretRepository)(nil)

func (r *MemorySecretRepository) CreateSecret(ctx context.Context, secret *models.SecretRecord) error {
	if secret == nil || secret.Username == "" || secret.Main == "" {
		return errors.New("invalid secret data: username and main must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.secrets[secret.Username]) > 0 {
		return repository.ErrSecretExists
	}
	r.secrets[secret.Username] = []models.SecretRecord{*secret}
	return nil
}

func (r *MemorySecretRepository) FindSecrets(ctx context.Context, username string) ([]*models.SecretRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	records := r.secrets[username]
	found := make([]*models.SecretRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		found = append(found, &rec)
	}
	return found, nil
}

func (r *MemorySecretRepository) DeleteSecrets(ctx context.Context, username string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.secrets, username)
	return nil
}

// Count returns the number of secrets stored across all usernames.
func (r *MemorySecretRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	n := 0
	for _, records := range r.secrets {
		n += len(records)
	}
	return n
}
