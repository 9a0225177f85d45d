package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

var (
	// ErrInvalidCredential covers malformed, badly signed and expired
	// tokens. Terminal: the caller must re-authenticate.
	ErrInvalidCredential = errors.New("invalid or expired credential")

	// ErrRoleNotHeld is returned when a switch requests a role absent from
	// the credential's frozen role set.
	ErrRoleNotHeld = errors.New("requested role not held by credential")
)

// Claims is the payload of a session credential: the identity, the full role
// set snapshotted at issuance, and the single active role gating role-scoped
// actions.
type Claims struct {
	jwt.RegisteredClaims
	Roles      []models.Role `json:"roles"`
	ActiveRole models.Role   `json:"active_role"`
}

// Credential is a decoded, verified session credential.
type Credential struct {
	UserID     string
	Roles      []models.Role
	ActiveRole models.Role
	ExpiresAt  time.Time
}

func (c *Credential) HasRole(role models.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Issuer mints and verifies session credentials. Credentials are never
// persisted and there is no revocation list: a superseded credential stays
// valid until its natural expiry. Role switches re-issue rather than mutate.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	name   string
}

func NewIssuer(secret []byte, ttl time.Duration, name string) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: secret, ttl: ttl, name: name}
}

// DefaultActiveRole picks the active role for a first issuance: ta wins when
// the user holds both ta and student, otherwise the first held role.
func DefaultActiveRole(roles []models.Role) models.Role {
	if len(roles) == 0 {
		return ""
	}
	var hasTA, hasStudent bool
	for _, r := range roles {
		hasTA = hasTA || r == models.RoleTA
		hasStudent = hasStudent || r == models.RoleStudent
	}
	if hasTA && hasStudent {
		return models.RoleTA
	}
	return roles[0]
}

// Issue mints a credential for the user with the given active role. The
// active role must be one the user currently holds.
func (i *Issuer) Issue(user *models.User, activeRole models.Role) (string, *Credential, error) {
	if !user.HasRole(activeRole) {
		return "", nil, ErrRoleNotHeld
	}
	roles := make([]models.Role, len(user.Roles))
	copy(roles, user.Roles)
	return i.sign(user.ID, roles, activeRole)
}

// SwitchRole verifies the presented credential and re-issues it with a new
// active role and a fresh TTL. The requested role is checked against the
// role set frozen in the credential, not a fresh store read; the staleness
// window this opens is bounded by the credential TTL.
func (i *Issuer) SwitchRole(tokenString string, requested models.Role) (string, *Credential, error) {
	cred, err := i.Parse(tokenString)
	if err != nil {
		return "", nil, err
	}
	if !cred.HasRole(requested) {
		return "", nil, ErrRoleNotHeld
	}
	return i.sign(cred.UserID, cred.Roles, requested)
}

// Parse verifies the signature and expiry and returns the decoded credential.
func (i *Issuer) Parse(tokenString string) (*Credential, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.Subject == "" || claims.ActiveRole == "" || len(claims.Roles) == 0 {
		return nil, ErrInvalidCredential
	}
	cred := &Credential{
		UserID:     claims.Subject,
		Roles:      claims.Roles,
		ActiveRole: claims.ActiveRole,
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	if !cred.HasRole(cred.ActiveRole) {
		return nil, ErrInvalidCredential
	}
	return cred, nil
}

func (i *Issuer) sign(userID string, roles []models.Role, activeRole models.Role) (string, *Credential, error) {
	now := time.Now()
	expiry := now.Add(i.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		Roles:      roles,
		ActiveRole: activeRole,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, &Credential{
		UserID:     userID,
		Roles:      roles,
		ActiveRole: activeRole,
		ExpiresAt:  expiry,
	}, nil
}
