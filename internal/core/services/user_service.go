package services

import (
	"context"
	"errors"
	"log"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/core/domain"
	"librahub/internal/pkg/password"
)

// User service errors
var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidRole         = errors.New("invalid role")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page  int
	Limit int
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// UpdateUserByAdminInput represents update user input (for admin)
type UpdateUserByAdminInput struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit

	users, total, err := s.userRepo.List(ctx, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      userResponses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUserByAdmin updates a user's email, role or active flag
func (s *UserService) UpdateUserByAdmin(ctx context.Context, adminID, userID uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Role != nil {
		if adminID == userID {
			return nil, ErrCannotChangeOwnRole
		}
		switch domain.Role(*input.Role) {
		case domain.RoleUser, domain.RoleStaff, domain.RoleAdmin:
			user.Role = *input.Role
		default:
			return nil, ErrInvalidRole
		}
	}

	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User %d updated by admin %d", userID, adminID)
	return user.ToResponse(), nil
}

// UpdateProfile updates the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FullName != nil && *input.FullName != "" {
		user.FullName = *input.FullName
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ChangePassword changes the caller's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	if !password.Validate(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password changed for user %d", userID)
	return nil
}

// DeleteUser soft deletes a user account
func (s *UserService) DeleteUser(ctx context.Context, adminID, userID uint) error {
	if adminID == userID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Printf("✅ User %d deleted by admin %d", userID, adminID)
	return nil
}
