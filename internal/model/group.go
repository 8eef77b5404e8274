package model

import "time"

// Group is a set of members with a shared pool of tasks, owned by an Admin.
type Group struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedBy string    `bson:"created_by"`
	Members   []string  `bson:"members"` // user ids, no duplicates
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// HasAccess reports whether userID created the group or belongs to it.
func (g *Group) HasAccess(userID string) bool {
	if g.CreatedBy == userID {
		return true
	}
	return g.IsMember(userID)
}

func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
