package domain

import (
	"context"
	"time"
)

// Role is a closed set of application roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new active User with role USER. ID is set by the repository on create.
func NewUser(name, email, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// IsAdmin reports whether the user has the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Search(ctx context.Context, term string, params PaginationParams) ([]*User, int, error)
}

// UserService defines the business logic for user registration and profiles.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id, name, email string) (*User, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Search(ctx context.Context, term string, params PaginationParams) ([]*User, int, error)
}

// AuthService defines authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
