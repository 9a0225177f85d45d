package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

var testSecret = []byte("test-secret")

func testUser(roles ...models.Role) *models.User {
	return &models.User{
		ID:    "u-1",
		Name:  "Test User",
		Email: "test@example.com",
		Roles: roles,
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour, "coursehub")

	token, cred, err := issuer.Issue(testUser(models.RoleStudent, models.RoleTA), models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if cred.ActiveRole != models.RoleStudent {
		t.Errorf("expected active role student, got %s", cred.ActiveRole)
	}

	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.UserID != "u-1" {
		t.Errorf("expected user u-1, got %s", parsed.UserID)
	}
	if parsed.ActiveRole != models.RoleStudent {
		t.Errorf("expected active role student, got %s", parsed.ActiveRole)
	}
	if len(parsed.Roles) != 2 {
		t.Errorf("expected 2 roles in credential, got %d", len(parsed.Roles))
	}
}

func TestIssueRejectsUnheldRole(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour, "coursehub")

	_, _, err := issuer.Issue(testUser(models.RoleStudent), models.RoleProfessor)
	if !errors.Is(err, ErrRoleNotHeld) {
		t.Fatalf("expected ErrRoleNotHeld, got %v", err)
	}
}

func TestSwitchRole(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour, "coursehub")
	token, _, err := issuer.Issue(testUser(models.RoleStudent, models.RoleTA), models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	t.Run("held role succeeds", func(t *testing.T) {
		newToken, cred, err := issuer.SwitchRole(token, models.RoleTA)
		if err != nil {
			t.Fatalf("SwitchRole failed: %v", err)
		}
		if cred.ActiveRole != models.RoleTA {
			t.Errorf("expected active role ta, got %s", cred.ActiveRole)
		}
		parsed, err := issuer.Parse(newToken)
		if err != nil {
			t.Fatalf("Parse of re-issued token failed: %v", err)
		}
		if parsed.ActiveRole != models.RoleTA {
			t.Errorf("re-issued token decodes to active role %s, want ta", parsed.ActiveRole)
		}
	})

	t.Run("unheld role denied", func(t *testing.T) {
		_, _, err := issuer.SwitchRole(token, models.RoleProfessor)
		if !errors.Is(err, ErrRoleNotHeld) {
			t.Fatalf("expected ErrRoleNotHeld, got %v", err)
		}
	})

	t.Run("garbage token denied", func(t *testing.T) {
		_, _, err := issuer.SwitchRole("not-a-token", models.RoleTA)
		if !errors.Is(err, ErrInvalidCredential) {
			t.Fatalf("expected ErrInvalidCredential, got %v", err)
		}
	})
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer(testSecret, -time.Minute, "coursehub")
	// negative ttl is normalized to the default, so sign manually expired
	issuer.ttl = -time.Minute
	token, _, err := issuer.Issue(testUser(models.RoleStudent), models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for expired token, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour, "coursehub")
	other := NewIssuer([]byte("other-secret"), time.Hour, "coursehub")

	token, _, err := other.Issue(testUser(models.RoleStudent), models.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for foreign signature, got %v", err)
	}
}

func TestDefaultActiveRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []models.Role
		want  models.Role
	}{
		{name: "student only", roles: []models.Role{models.RoleStudent}, want: models.RoleStudent},
		{name: "ta only", roles: []models.Role{models.RoleTA}, want: models.RoleTA},
		{name: "student and ta prefers ta", roles: []models.Role{models.RoleStudent, models.RoleTA}, want: models.RoleTA},
		{name: "ta and student prefers ta", roles: []models.Role{models.RoleTA, models.RoleStudent}, want: models.RoleTA},
		{name: "professor", roles: []models.Role{models.RoleProfessor}, want: models.RoleProfessor},
		{name: "empty", roles: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultActiveRole(tt.roles); got != tt.want {
				t.Errorf("DefaultActiveRole(%v) = %q, want %q", tt.roles, got, tt.want)
			}
		})
	}
}
