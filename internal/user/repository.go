package user

import (
	"context"
	"strings"
	"sync"

	"github.com/wichananm65/orders-api/internal/apperror"
)

var (
	ErrNotFound           = apperror.NewNotFound("User not found")
	ErrInvalidCredentials = apperror.NewUnauthorized("Invalid email or password")
	ErrInactive           = apperror.NewForbidden("Account is deactivated")
	ErrEmailExists        = apperror.NewConflict("Email already registered")
	ErrAdminProtected     = apperror.NewForbidden("Cannot deactivate admin users")
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}

	maxID := 0
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, len(r.users))
	copy(users, r.users)
	return users, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return User{}, ErrEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++

	r.users = append(r.users, user)
	return user, nil
}

// Update overwrites the mutable fields of the stored user. Email and role are
// never changed here.
func (r *InMemoryRepository) Update(ctx context.Context, userUpdate User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == userUpdate.ID {
			user.FirstName = userUpdate.FirstName
			user.LastName = userUpdate.LastName
			user.IsActive = userUpdate.IsActive
			if userUpdate.PasswordHash != "" {
				user.PasswordHash = userUpdate.PasswordHash
			}
			user.UpdatedAt = userUpdate.UpdatedAt
			r.users[i] = user
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) CountByRole(ctx context.Context, role string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}
