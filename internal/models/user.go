package models

import "time"

// User is the admin account record. The service is single-administrator;
// the store still keys by username so credentials stay a regular keyed
// record store.
type User struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Username       string    `json:"username" bson:"username"`
	HashedPassword string    `json:"-" bson:"hashedPassword"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}
