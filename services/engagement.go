package services

import (
	"context"
	"log"
	"strings"

	"socialhub/database"
	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engagement mutates a post's like set and comment thread. Like the
// relationship writes, there is no optimistic concurrency: two concurrent
// likes on the same post may lose one of the updates.
type Engagement struct {
	posts    database.PostStore
	notifier Notifier
}

func NewEngagement(posts database.PostStore, notifier Notifier) *Engagement {
	return &Engagement{posts: posts, notifier: orNop(notifier)}
}

func (e *Engagement) notifyOwner(post *models.Post, actor primitive.ObjectID, event Event) {
	if post.UserID == actor {
		return
	}
	e.notifier.NotifyUser(post.UserID.Hex(), event)
}

func (e *Engagement) save(ctx context.Context, op string, post *models.Post) error {
	if err := e.posts.SavePost(ctx, post); err != nil {
		log.Printf("[%s] saving post %s failed: %v", op, post.ID.Hex(), err)
		return persistence(err)
	}
	return nil
}

func (e *Engagement) Like(ctx context.Context, actorID, postID string) (string, error) {
	actor, err := parseActor(actorID)
	if err != nil {
		return "", err
	}
	post, err := loadPost(ctx, e.posts, postID, msgPostNotFound)
	if err != nil {
		return "", err
	}
	if post.LikedBy(actor) {
		return "", conflict("Already liked")
	}

	post.AddLike(actor)
	if err := e.save(ctx, "Like", post); err != nil {
		return "", err
	}

	e.notifyOwner(post, actor, Event{
		Type: EventLike,
		Payload: map[string]any{
			"postId": post.ID.Hex(),
			"userId": actor.Hex(),
		},
	})
	return "Liked successfully", nil
}

// Unlike reports a missing like as not found rather than a bad request.
func (e *Engagement) Unlike(ctx context.Context, actorID, postID string) (string, error) {
	actor, err := parseActor(actorID)
	if err != nil {
		return "", err
	}
	post, err := loadPost(ctx, e.posts, postID, msgPostNotFound)
	if err != nil {
		return "", err
	}
	if !post.LikedBy(actor) {
		return "", notFound("Not liked")
	}

	post.RemoveLike(actor)
	if err := e.save(ctx, "Unlike", post); err != nil {
		return "", err
	}
	return "Unliked successfully", nil
}

// Comment appends to the end of the post's thread and returns the new comment id.
func (e *Engagement) Comment(ctx context.Context, actorID, postID, text string) (primitive.ObjectID, error) {
	actor, err := parseActor(actorID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	post, err := loadPost(ctx, e.posts, postID, msgPostNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if strings.TrimSpace(text) == "" {
		return primitive.NilObjectID, validation("desc is required")
	}

	comment := post.AppendComment(actor, text)
	if err := e.save(ctx, "Comment", post); err != nil {
		return primitive.NilObjectID, err
	}

	e.notifyOwner(post, actor, Event{
		Type: EventComment,
		Payload: map[string]any{
			"postId":    post.ID.Hex(),
			"commentId": comment.ID.Hex(),
			"userId":    actor.Hex(),
			"desc":      comment.Desc,
		},
	})
	return comment.ID, nil
}
