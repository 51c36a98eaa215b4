// internal/models/staff.go
package models

import "github.com/google/uuid"

// StaffRole is the level of tournament access a staff member holds.
type StaffRole string

const (
	RoleReferee   StaffRole = "referee"
	RoleOrganizer StaffRole = "organizer"
)

// CanReferee reports whether the role is allowed to claim a referee slot.
func (r StaffRole) CanReferee() bool {
	return r == RoleReferee || r == RoleOrganizer
}

// StaffMember is a row in the staff table: a platform user with a tournament
// role. Handle is the in-game name used when granting multiplayer privileges.
type StaffMember struct {
	UserID uuid.UUID `json:"user_id"`
	Handle string    `json:"handle"`
	Role   StaffRole `json:"role"`

	// TokenHash is the argon2id hash of the member's API token, used by the
	// staff HTTP endpoints. Never serialized.
	TokenHash string `json:"-"`
}
