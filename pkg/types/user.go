package types

import (
	"strings"
	"time"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
)

// User is a storefront account. PasswordHash never leaves the service;
// the json tag keeps it out of every envelope.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         enums.Role `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserSession is the reduced identity persisted per login and embedded in
// access token claims. It never carries credentials.
type UserSession struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
}

// NormalizeUser maps a raw upstream user record onto the canonical shape.
// Mock fixtures are loosely typed, so every field is coerced defensively.
func NormalizeUser(raw map[string]any) User {
	u := User{
		ID:           CoerceString(raw["id"]),
		Name:         CoerceString(raw["name"]),
		Email:        NormalizeEmail(CoerceString(raw["email"])),
		PasswordHash: CoerceString(raw["passwordHash"]),
		Active:       true,
	}
	// Legacy mock fixtures carry a plaintext password field. It is kept
	// as the stored credential until the first successful login upgrades
	// it to an argon2id hash.
	if u.PasswordHash == "" {
		u.PasswordHash = CoerceString(raw["password"])
	}

	role, err := enums.ParseRole(CoerceString(raw["role"]))
	if err != nil {
		role = enums.RoleUser
	}
	u.Role = role

	if v, ok := raw["active"]; ok {
		u.Active = CoerceBool(v, true)
	} else if v, ok := raw["isActive"]; ok {
		u.Active = CoerceBool(v, true)
	}

	u.CreatedAt = CoerceTime(raw["createdAt"])
	return u
}

// NormalizeEmail lowercases and trims an email for use as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
