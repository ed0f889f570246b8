package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// MemoryUserRepository keeps user documents in maps (NOT FOR PRODUCTION).
type MemoryUserRepository struct {
	users   map[string]models.User // username -> document
	byEmail map[string]string      // email -> username
	mutex   sync.RWMutex
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

var _ repository.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" {
		return errors.New("invalid user data: username must be set")
	}
	email := user.PrimaryEmail()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.taken(user.Username) {
		return repository.ErrUserExists
	}
	if email != "" {
		if r.taken(email) {
			return repository.ErrEmailExists
		}
		r.byEmail[email] = user.Username
	}

	stored := *user
	stored.Emails = append([]string(nil), user.Emails...)
	r.users[user.Username] = stored
	return nil
}

func (r *MemoryUserRepository) FindUsers(ctx context.Context, target string) ([]*models.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	found := []*models.User{}
	if user, ok := r.users[target]; ok {
		u := user
		found = append(found, &u)
	}
	if username, ok := r.byEmail[target]; ok && username != target {
		if user, ok := r.users[username]; ok {
			u := user
			found = append(found, &u)
		}
	}
	return found, nil
}

func (r *MemoryUserRepository) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.taken(username), r.taken(email), nil
}

// taken reports whether id is in use as a username or as an email.
// Callers hold the mutex.
func (r *MemoryUserRepository) taken(id string) bool {
	if id == "" {
		return false
	}
	_, asUsername := r.users[id]
	_, asEmail := r.byEmail[id]
	return asUsername || asEmail
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.users)
}
