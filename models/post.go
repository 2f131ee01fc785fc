package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Title     string               `bson:"title" json:"title"`
	Desc      string               `bson:"desc" json:"desc"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
}

type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Desc   string             `bson:"desc" json:"desc"`
}

func (p *Post) LikedBy(id primitive.ObjectID) bool {
	return containsID(p.Likes, id)
}

func (p *Post) AddLike(id primitive.ObjectID) {
	p.Likes = addID(p.Likes, id)
}

func (p *Post) RemoveLike(id primitive.ObjectID) {
	p.Likes = removeID(p.Likes, id)
}

// AppendComment adds a comment at the end of the thread and returns it.
func (p *Post) AppendComment(userID primitive.ObjectID, desc string) Comment {
	comment := Comment{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Desc:   desc,
	}
	p.Comments = append(p.Comments, comment)
	return comment
}

// Response shapes

type CreatedPost struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Desc      string             `json:"desc"`
	CreatedAt time.Time          `json:"createdAt"`
}

type CommentSummary struct {
	UserID  primitive.ObjectID `json:"userId"`
	Comment string             `json:"comment"`
}

type PostSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Desc      string             `json:"desc"`
	CreatedAt time.Time          `json:"createdAt"`
	Comments  []CommentSummary   `json:"comments"`
	Likes     int                `json:"likes"`
}

type PostDetail struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	PostedBy string `json:"postedBy"`
}
