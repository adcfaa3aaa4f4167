package models

import (
	"time"

	"github.com/google/uuid"
)

// Closed set of roles the application recognizes. Authorization checks
// compare against these constants, never against free-form strings.
const (
	RoleAdmin    = "admin"
	RoleAgent    = "agent"
	RoleCustomer = "customer"
)

// AllRoles lists every role the system accepts, in seed order.
func AllRoles() []string {
	return []string{RoleAdmin, RoleAgent, RoleCustomer}
}

// User represents an account holder. Accounts start inactive and become
// active once the activation token is redeemed.
type User struct {
	BaseModel
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `gorm:"uniqueIndex" json:"email"`
	Telephone       string     `json:"telephone"`
	PasswordHash    string     `json:"-"`
	Role            string     `gorm:"default:customer" json:"role"`
	Active          bool       `json:"active"`
	ActivationToken string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	Avatar          string     `json:"avatar"`
	Roles           []Role     `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// HasRole reports whether the user's primary role matches.
func (u *User) HasRole(role string) bool {
	return u.Role == role
}

// Role is an assignable role name. Users carry a primary role string plus
// the full association set managed by admins.
type Role struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
}

// AccessToken backs a single issued bearer token. The token's jti claim is
// this row's ID; deleting the row revokes the token.
type AccessToken struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
