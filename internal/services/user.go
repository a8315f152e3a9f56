package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pomotrack/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinNameLength     = 3
	MinPasswordLength = 6

	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72

	DefaultBcryptCost = 10
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByName(ctx context.Context, name string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates signup and credential verification.
type UserService struct {
	repo      UserRepository
	cost      int
	dummyHash []byte
}

func NewUserService(repo UserRepository, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	// Compared against when the name is unknown, so both failure paths pay
	// for one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("pomotrack-unknown-user"), bcryptCost)
	return &UserService{repo: repo, cost: bcryptCost, dummyHash: dummy}
}

func (s *UserService) Get(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Signup validates the credentials, hashes the password and creates the user.
func (s *UserService) Signup(ctx context.Context, name, password string) (types.User, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return types.User{}, invalidInput("name must be at least %d characters", MinNameLength)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return types.User{}, invalidInput("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return types.User{}, invalidInput("password must be at most %d bytes", maxPasswordBytes)
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return types.User{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return types.User{}, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         name,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user whose name and password match. Unknown names
// and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (types.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return types.User{}, invalidInput("name and password are required")
	}

	user, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}
