package domain

import "time"

// Role is the account type carried in the access token.
type Role string

const (
	RoleJobSeeker Role = "jobSeeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// User is the profile record for an authenticated account. Credentials live
// with the identity provider; this service only keeps what it needs to
// address emails and authorize actions.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFilter holds query parameters for the admin user listing.
type UserFilter struct {
	Role  *Role
	Page  int
	Limit int
}
