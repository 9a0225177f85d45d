package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSD-2025/coursehub-service/internal/auth"
	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/repositories"
	"github.com/CSD-2025/coursehub-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	issuer    *auth.Issuer
	oauth     *casdoorsdk.Client
}

// NewAuthService wires the credential issuer and optional OAuth client.
// oauth may be nil; LoginWithOAuth then fails cleanly.
func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, issuer *auth.Issuer, oauth *casdoorsdk.Client) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		issuer:    issuer,
		oauth:     oauth,
	}
}

// canonicalEmail is the stored form of an email address. All lookups and
// writes go through it so casing differences never create duplicate accounts.
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "email", req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRoleSet(req.Roles); err != nil {
		return nil, err
	}
	req.Email = canonicalEmail(req.Email)

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	user := &models.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		Roles: req.Roles,
	}
	if err := user.SetCredential(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "roles", user.Roles)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, canonicalEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := user.CheckCredential(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	active := auth.DefaultActiveRole(user.Roles)
	token, cred, err := s.issuer.Issue(user, active)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "active_role", active)
	return tokenResponse(token, cred), nil
}

// SwitchRole re-issues a credential with a different active role. The role
// must be held by the presented credential itself; stored roles are not
// consulted, so a recently widened role set takes effect at next login.
func (s *authService) SwitchRole(ctx context.Context, token string, requested models.Role) (*TokenResponse, error) {
	if !requested.Valid() {
		return nil, ErrInvalidRole
	}

	newToken, cred, err := s.issuer.SwitchRole(token, requested)
	if err != nil {
		if errors.Is(err, auth.ErrRoleNotHeld) {
			return nil, ErrRoleNotHeld
		}
		return nil, err
	}

	s.logger.Info("Role switched", "user_id", cred.UserID, "active_role", requested)
	return tokenResponse(newToken, cred), nil
}

// LoginWithOAuth exchanges the provider code for identity and issues a local
// credential. A first-time login creates the user with the student role.
func (s *authService) LoginWithOAuth(ctx context.Context, code, state string) (*TokenResponse, error) {
	if s.oauth == nil {
		return nil, fmt.Errorf("oauth login is not configured")
	}

	oauthToken, err := s.oauth.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	claims, err := s.oauth.ParseJwtToken(oauthToken.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oauth token: %w", err)
	}

	subject := claims.User.Id
	user, err := s.repo.User().GetByOAuthSubject(ctx, nil, subject)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, err
		}
		user, err = s.bootstrapOAuthUser(ctx, subject, claims.User.DisplayName, claims.User.Email)
		if err != nil {
			return nil, err
		}
	}

	active := auth.DefaultActiveRole(user.Roles)
	token, cred, err := s.issuer.Issue(user, active)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	return tokenResponse(token, cred), nil
}

// bootstrapOAuthUser links an existing account by email or creates a fresh
// student account.
func (s *authService) bootstrapOAuthUser(ctx context.Context, subject, name, email string) (*models.User, error) {
	email = canonicalEmail(email)
	if email != "" {
		existing, err := s.repo.User().GetByEmail(ctx, nil, email)
		if err == nil {
			existing.OAuthSubject = &subject
			if err := s.repo.User().Update(ctx, nil, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if !repositories.IsNotFoundError(err) {
			return nil, err
		}
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Roles:        []models.Role{models.RoleStudent},
		OAuthSubject: &subject,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("OAuth user bootstrapped", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *authService) ParseCredential(token string) (*auth.Credential, error) {
	return s.issuer.Parse(token)
}

func tokenResponse(token string, cred *auth.Credential) *TokenResponse {
	return &TokenResponse{
		Token:      token,
		ActiveRole: cred.ActiveRole,
		Roles:      cred.Roles,
		ExpiresAt:  cred.ExpiresAt,
	}
}
