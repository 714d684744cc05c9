package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is the privilege level of an authenticated identity.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// ParseRole maps a stored role name to a Role. Anything but "admin" is a plain user.
func ParseRole(s string) Role {
	if s == "admin" {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// MarshalText renders the role by name in JSON and logs.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Identity is the acting user of a request, already authenticated.
type Identity struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  Role               `json:"role"`
}

// CanModify reports whether actor may update or delete rec.
func CanModify(actor Identity, rec MarketRecord) bool {
	return actor.Role == RoleAdmin || actor.ID == rec.CreatedBy
}

// User is a stored account as read from the user directory.
type User struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Role     string             `bson:"role"`
	IsActive bool               `bson:"isActive"`
}

// Identity converts the account into the request identity.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: ParseRole(u.Role)}
}

// Owner returns the display form of the account.
func (u User) Owner() Owner {
	return Owner{ID: u.ID, Name: u.Name, Email: u.Email}
}
