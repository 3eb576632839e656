package models

import "time"

// User is a credential record. PasswordHash is never serialized to clients;
// responses are built from explicit response structs.
type User struct {
	ID              string    `bson:"_id" json:"-"`
	Name            string    `bson:"name" json:"-"`
	Email           string    `bson:"email" json:"-"`
	PasswordHash    string    `bson:"password_hash" json:"-"`
	Bio             string    `bson:"bio,omitempty" json:"-"`
	ProfileImageURL string    `bson:"profile_image_url,omitempty" json:"-"`
	CreatedAt       time.Time `bson:"created_at" json:"-"`
	UpdatedAt       time.Time `bson:"updated_at" json:"-"`
}
