package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) GetByID(ctx context.Context, id string, actor *auth.Credential) (*models.User, error) {
	if id != actor.UserID && actor.ActiveRole != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.UserID, id, "user", "read", "can only read own profile")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *ProfileUpdateRequest, actor *auth.Credential) (*models.User, error) {
	if id != actor.UserID && actor.ActiveRole != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.UserID, id, "user", "update", "can only update own profile")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		if err := user.SetCredential(*req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", id, "actor_id", actor.UserID)
	return user, nil
}

// UpdateRoles replaces a user's role set. Super admin only; the new set must
// satisfy the role-set invariant.
func (s *userService) UpdateRoles(ctx context.Context, id string, roles []models.Role, actor *auth.Credential) (*models.User, error) {
	if actor.ActiveRole != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.UserID, id, "user", "update_roles", "requires active super_admin role")
	}

	if err := s.validator.ValidateRoleSet(roles); err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateRoles(ctx, nil, id, roles); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Roles updated", "user_id", id, "roles", roles, "actor_id", actor.UserID)
	return user, nil
}

// List supports the role filter behind the professor/TA/student pickers.
func (s *userService) List(ctx context.Context, opts ListOptions, actor *auth.Credential) (*UserListResponse, error) {
	switch actor.ActiveRole {
	case models.RoleSuperAdmin, models.RoleProfessor:
		// staff pickers
	default:
		return nil, NewPermissionError(actor.UserID, "", "user", "list", "requires active staff role")
	}

	page, size := normalizePage(opts.Page, opts.Size)
	filters := repositories.UserFilters{
		Query:  opts.Query,
		Role:   opts.Role,
		Limit:  size,
		Offset: (page - 1) * size,
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	return &UserListResponse{Users: users, Total: total, Page: page, Size: size}, nil
}
