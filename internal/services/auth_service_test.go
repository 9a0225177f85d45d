package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, &RegisterRequest{
		Name:     "Ada",
		Email:    "ada@x.com",
		Password: "correct-horse-battery",
		Roles:    []models.Role{models.RoleStudent, models.RoleTA},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(user.CredentialHash) == 0 {
		t.Error("expected stored credential hash")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, &RegisterRequest{
			Name:     "Ada Again",
			Email:    "ada@x.com",
			Password: "another-password-1",
			Roles:    []models.Role{models.RoleStudent},
		})
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("login issues ta as default active role", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &LoginRequest{Email: "ada@x.com", Password: "correct-horse-battery"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.ActiveRole != models.RoleTA {
			t.Errorf("expected default active role ta, got %s", resp.ActiveRole)
		}
		cred, err := env.auth.ParseCredential(resp.Token)
		if err != nil {
			t.Fatalf("ParseCredential failed: %v", err)
		}
		if cred.UserID != user.ID {
			t.Errorf("credential subject mismatch: %s", cred.UserID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := env.auth.Login(ctx, &LoginRequest{Email: "ada@x.com", Password: "nope-nope-nope"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestRegisterRejectsInvalidRoleSets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		roles []models.Role
	}{
		{"empty", nil},
		{"super admin not singleton", []models.Role{models.RoleSuperAdmin, models.RoleStudent}},
		{"professor not singleton", []models.Role{models.RoleProfessor, models.RoleTA}},
		{"duplicate", []models.Role{models.RoleStudent, models.RoleStudent}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, &RegisterRequest{
				Name:     "X",
				Email:    "x-" + tt.name + "@x.com",
				Password: "password-123",
				Roles:    tt.roles,
			})
			if err == nil {
				t.Errorf("expected role set %v to be rejected", tt.roles)
			}
		})
	}
}

func TestSwitchRole_UsesFrozenCredentialRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, &RegisterRequest{
		Name:     "Dual",
		Email:    "dual@x.com",
		Password: "password-123",
		Roles:    []models.Role{models.RoleStudent, models.RoleTA},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resp, err := env.auth.Login(ctx, &LoginRequest{Email: "dual@x.com", Password: "password-123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	switched, err := env.auth.SwitchRole(ctx, resp.Token, models.RoleStudent)
	if err != nil {
		t.Fatalf("SwitchRole failed: %v", err)
	}
	if switched.ActiveRole != models.RoleStudent {
		t.Errorf("expected active role student, got %s", switched.ActiveRole)
	}

	// The stored role set shrinking does not affect an already issued
	// credential; switching consults the frozen roles only.
	if err := env.repo.users.UpdateRoles(ctx, nil, user.ID, []models.Role{models.RoleStudent}); err != nil {
		t.Fatalf("UpdateRoles failed: %v", err)
	}
	if _, err := env.auth.SwitchRole(ctx, resp.Token, models.RoleTA); err != nil {
		t.Errorf("switch within frozen roles should succeed, got %v", err)
	}

	// A role the credential never carried is refused.
	if _, err := env.auth.SwitchRole(ctx, resp.Token, models.RoleProfessor); !errors.Is(err, ErrRoleNotHeld) {
		t.Errorf("expected ErrRoleNotHeld, got %v", err)
	}
}
