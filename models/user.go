package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Followers    []primitive.ObjectID `bson:"followers" json:"followers"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func (u *User) AddFollowing(id primitive.ObjectID) {
	u.Following = addID(u.Following, id)
}

func (u *User) RemoveFollowing(id primitive.ObjectID) {
	u.Following = removeID(u.Following, id)
}

func (u *User) AddFollower(id primitive.ObjectID) {
	u.Followers = addID(u.Followers, id)
}

func (u *User) RemoveFollower(id primitive.ObjectID) {
	u.Followers = removeID(u.Followers, id)
}

type Profile struct {
	Name           string `json:"name"`
	FollowerCount  int    `json:"followerCount"`
	FollowingCount int    `json:"followingCount"`
}
