package users

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linglong/blog-admin/internal/models"
	"github.com/linglong/blog-admin/pkg/logger"
)

// Service encapsulates admin-user business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Authenticate verifies username and password against the stored hash.
// Returns (nil, nil) when the user is unknown or the password does not
// match; the caller cannot distinguish the two.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// burn a comparison so unknown users cost the same as bad passwords
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOa8Fo9eKIuNO0sBhVFAXg7q5DLOK4DWe"), []byte(password))
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

// EnsureAdmin creates the admin account, or updates its password when
// the configured password no longer matches the stored hash. Called at
// startup and from the createadmin CLI.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password required")
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && bcrypt.CompareHashAndPassword([]byte(existing.HashedPassword), []byte(password)) == nil {
		logger.Debugf("admin user %q up to date", username)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{Username: username, HashedPassword: string(hash)}
	if existing != nil {
		u.CreatedAt = existing.CreatedAt
	}
	u.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Upsert(ctx, u); err != nil {
		return err
	}
	if existing == nil {
		logger.Infof("admin user %q created", username)
	} else {
		logger.Infof("admin user %q password updated", username)
	}
	return nil
}
