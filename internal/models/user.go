package models

import "time"

type User struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	FirstName string     `bson:"first_name" json:"first_name"`
	LastName  string     `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Email     string     `bson:"email,omitempty" json:"email,omitempty"`
	IsOnline  bool       `bson:"is_online" json:"is_online"`
	LastSeen  *time.Time `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// DisplayName is what peers see in typing indicators and notifications.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
