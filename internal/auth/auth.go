package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/database"
)

const (
	// BcryptCost is the bcrypt cost factor
	BcryptCost = 12
	// MinPasswordLength is the shortest accepted staff password
	MinPasswordLength = 8
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// StaffStore persists staff accounts
type StaffStore interface {
	CreateStaffUser(ctx context.Context, username, email, passwordHash, role string) (*database.StaffUser, error)
	GetStaffUserByUsername(ctx context.Context, username string) (*database.StaffUser, error)
}

// NewStaff describes an account to create
type NewStaff struct {
	Username string `validate:"required,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=admin moderator"`
}

// StaffService manages staff accounts
type StaffService struct {
	store    StaffStore
	validate *validator.Validate
}

// NewStaffService creates a new staff service
func NewStaffService(store StaffStore) *StaffService {
	return &StaffService{
		store:    store,
		validate: validator.New(),
	}
}

// CreateStaff validates the input, hashes the password and stores the account.
// The role defaults to moderator.
func (s *StaffService) CreateStaff(ctx context.Context, in NewStaff) (*database.StaffUser, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = database.RoleModerator
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Validation(describeValidation(err))
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateStaffUser(ctx, in.Username, in.Email, hash, in.Role)
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		return nil, apperror.Conflict("Username already exists")
	case errors.Is(err, database.ErrEmailTaken):
		return nil, apperror.Conflict("Email already exists")
	case err != nil:
		return nil, apperror.Database(err)
	}

	log.Info().Str("username", user.Username).Str("role", user.Role).Msg("Staff user created")
	return user, nil
}

// Authenticate checks a username and password pair.
// Returns nil, nil if the credentials do not match.
func (s *StaffService) Authenticate(ctx context.Context, username, password string) (*database.StaffUser, error) {
	user, err := s.store.GetStaffUserByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Database(err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "Invalid email address"
	case "Password":
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	case "Role":
		return "Role must be admin or moderator"
	default:
		return fmt.Sprintf("Invalid %s", strings.ToLower(fe.Field()))
	}
}
