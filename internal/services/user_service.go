package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles user management
type UserService struct {
	users repository.UserRepository
	audit *AuditService
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit}
}

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	FirstName      *string
	LastName       *string
	Email          string
	Password       string
	Role           string
	OrganizationID *uint
	Phone          string
	EmployeeNumber *string
}

// UpdateUserInput carries the fields accepted when updating a user. Nil
// fields are left untouched.
type UpdateUserInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Password       *string
	Role           *string
	OrganizationID *uint
	Phone          *string
	EmployeeNumber *string
}

// Model returns the raw user record, used by handlers that need the full
// model to drive permission checks.
func (s *UserService) Model(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users matching the query.
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.UserResponse, int64, error) {
	users, total, err := s.users.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, total, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput, actor Actor) (*models.UserResponse, error) {
	if !models.ValidRole(input.Role) {
		return nil, fmt.Errorf("rôle invalide: %s", input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             &input.Email,
		EncryptedPassword: string(hash),
		Role:              models.NormalizeRole(input.Role),
		OrganizationID:    input.OrganizationID,
		Phone:             input.Phone,
		EmployeeNumber:    input.EmployeeNumber,
		IsActive:          true,
	}

	auditFn := func(tx *gorm.DB) error {
		return s.audit.Entry(actor, models.ActionCreated, "User", user.ID,
			nil, nil, fmt.Sprintf("Utilisateur %s créé", user.DisplayName()))(tx)
	}

	if err := s.users.Create(ctx, user, auditFn); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Update modifies a user. Only non-nil input fields are applied.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput, actor Actor) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, fmt.Errorf("rôle invalide: %s", *input.Role)
		}
		user.Role = models.NormalizeRole(*input.Role)
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Email != nil {
		user.Email = input.Email
	}
	if input.OrganizationID != nil {
		user.OrganizationID = input.OrganizationID
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.EmployeeNumber != nil {
		user.EmployeeNumber = input.EmployeeNumber
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.EncryptedPassword = string(hash)
	}

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", user.ID,
		nil, nil, fmt.Sprintf("Utilisateur %s modifié", user.DisplayName()))

	if err := s.users.Update(ctx, user, auditFn); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id uint, actor Actor) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	auditFn := s.audit.Entry(actor, models.ActionDeleted, "User", id,
		nil, nil, fmt.Sprintf("Utilisateur %s supprimé", user.DisplayName()))

	return s.users.Delete(ctx, id, auditFn)
}

// SetActive toggles an account and returns the confirmation message shown
// to the caller.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool, actor Actor) (*models.UserResponse, string, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	message := "Utilisateur désactivé"
	if active {
		message = "Utilisateur activé"
	}

	user.IsActive = active
	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", user.ID,
		nil, nil, fmt.Sprintf("%s: %s", message, user.DisplayName()))

	if err := s.users.Update(ctx, user, auditFn); err != nil {
		return nil, "", err
	}

	resp := user.ToResponse()
	return &resp, message, nil
}
