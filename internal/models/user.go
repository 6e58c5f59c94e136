package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// Valid reports whether g is one of the accepted gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnspecified:
		return true
	}
	return false
}

// User represents a ShadowMeet account. Password holds the bcrypt hash and
// is never serialized to JSON.
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Email            string               `bson:"email" json:"email"`
	Password         string               `bson:"password" json:"-"`
	FullName         string               `bson:"full_name" json:"fullName"`
	Bio              string               `bson:"bio" json:"bio"`
	ProfilePic       string               `bson:"profile_pic" json:"profilePic"`
	NativeLanguage   string               `bson:"native_language" json:"nativeLanguage"`
	LearningLanguage string               `bson:"learning_language" json:"learningLanguage"`
	Location         string               `bson:"location" json:"location"`
	Gender           Gender               `bson:"gender" json:"gender"`
	IsOnboarded      bool                 `bson:"is_onboarded" json:"isOnboarded"`
	Friends          []primitive.ObjectID `bson:"friends" json:"friends"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// PublicUser is the profile projection other users are allowed to see.
type PublicUser struct {
	ID               primitive.ObjectID `bson:"_id" json:"_id"`
	FullName         string             `bson:"full_name" json:"fullName"`
	ProfilePic       string             `bson:"profile_pic" json:"profilePic"`
	Bio              string             `bson:"bio" json:"bio,omitempty"`
	NativeLanguage   string             `bson:"native_language" json:"nativeLanguage"`
	LearningLanguage string             `bson:"learning_language" json:"learningLanguage"`
	Location         string             `bson:"location" json:"location"`
	Gender           Gender             `bson:"gender" json:"gender"`
}
