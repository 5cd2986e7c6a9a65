package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RegisterInput carries the fields accepted when a customer signs up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileUpdate holds optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates a customer account. New accounts always get role=user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate checks credentials. A deactivated account is reported as
// ErrInactive only after the password matched.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, ErrInactive
	}

	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int, update ProfileUpdate) (User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if update.FirstName != nil {
		existing.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		existing.LastName = strings.TrimSpace(*update.LastName)
	}
	existing.PasswordHash = ""
	if update.Password != nil && *update.Password != "" {
		hashed, err := hashPassword(*update.Password)
		if err != nil {
			return User{}, err
		}
		existing.PasswordHash = hashed
	}
	existing.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, existing)
}

// ToggleActive flips the active flag of a customer account. Admin accounts
// cannot be toggled.
func (s *Service) ToggleActive(ctx context.Context, id int) (User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if existing.IsAdmin() {
		return User{}, ErrAdminProtected
	}

	existing.IsActive = !existing.IsActive
	existing.PasswordHash = ""
	existing.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, existing)
}

// CountCustomers returns the number of non-admin accounts.
func (s *Service) CountCustomers(ctx context.Context) (int, error) {
	return s.repo.CountByRole(ctx, RoleUser)
}

// EnsureAdmin creates the admin account when no user with that email exists.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	_, err = s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
