package model

import "time"

// User is the profile document stored in the "users" collection.
// ID is the credential store id and doubles as the document _id.
type User struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	Username     string     `bson:"username"`
	PasswordHash string     `bson:"password_hash"`
	Role         Role       `bson:"role"`
	LastLogin    *time.Time `bson:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

// UserPatch is a partial profile update. Nil fields are left as stored.
type UserPatch struct {
	Username  *string
	Email     *string
	Role      *Role
	UpdatedAt time.Time
}

// Apply copies the fields set in p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = p.UpdatedAt
}
