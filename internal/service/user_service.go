package service

import (
	"errors"
	"fmt"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailExists       = errors.New("email already exists")
	ErrRoleNotFound      = errors.New("role not found")
	ErrLastMasterAdmin   = errors.New("the last master admin cannot be removed")
	ErrUnknownPrivileges = errors.New("unknown privilege codes")
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.UserResponse, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.UserResponse, error)
	DeleteUser(userID uuid.UUID, deleterID string) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.UserResponse, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number" validate:"max=20"`
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		// A new user starts with the privileges of the role
		Privileges: role.Privileges,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.GetUserByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}

	roleChanged := user.RoleID == nil || *user.RoleID != role.ID
	if roleChanged && user.RoleCode() == model.RoleMasterAdmin {
		if err := s.keepOneMasterAdmin(); err != nil {
			return nil, err
		}
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	// Moving to another role resets the privileges to that role's set
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(userID, role.Privileges); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, deleterID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if user.RoleCode() == model.RoleMasterAdmin {
		if err := s.keepOneMasterAdmin(); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(userID, deleterID); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(unique(privilegeCodes)) {
		return nil, ErrUnknownPrivileges
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, err
	}
	user.UpdatedBy = updaterID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.GetUserByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) keepOneMasterAdmin() error {
	count, err := s.userRepo.CountByRole(model.RoleMasterAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastMasterAdmin
	}
	return nil
}

func unique(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := codes[:0:0]
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
