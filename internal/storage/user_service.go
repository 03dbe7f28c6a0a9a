package storage

import (
	"fmt"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// userStorage is the persisted user row; the hash never crosses the service
// boundary.
type userStorage struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// UserService handles user management and authentication.
type UserService struct {
	store *docstore.Store
	now   func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(store *docstore.Store) *UserService {
	return &UserService{store: store, now: time.Now}
}

func (s *UserService) rows() []userStorage {
	return decodeRows[userStorage](s.store.Read(ColUsers))
}

// Get retrieves a user by ID.
func (s *UserService) Get(id string) (*models.User, error) {
	for _, stored := range s.rows() {
		if stored.ID == id {
			user := stored.User
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	for _, stored := range s.rows() {
		if stored.Email == email {
			user := stored.User
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

// Create adds a new user with a bcrypt-hashed password.
func (s *UserService) Create(email, password, name string, role models.UserRole) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if role == "" {
		role = models.RoleStaff
	}

	rows := s.rows()
	for _, stored := range rows {
		if stored.Email == email {
			return nil, fmt.Errorf("%w: user %s already exists", ErrExists, email)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        newID(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: s.now().Format(time.RFC3339),
	}
	rows = append(rows, userStorage{User: user, PasswordHash: string(hash)})
	if _, err := s.store.Write(ColUsers, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w: %w", ErrPersist, err)
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	for _, stored := range s.rows() {
		if stored.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
			break
		}
		user := stored.User
		return &user, nil
	}
	return nil, fmt.Errorf("invalid credentials")
}

// Bootstrap creates the admin user when the collection has no users yet,
// so a fresh deployment is immediately usable.
func (s *UserService) Bootstrap(email, password, name string) error {
	if len(s.rows()) > 0 {
		return nil
	}
	_, err := s.Create(email, password, name, models.RoleAdmin)
	return err
}
