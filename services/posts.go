package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"socialhub/database"
	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgPostNotFound = "Post not found"

// Posts handles creation, listing, lookup and owner-only deletion of posts.
type Posts struct {
	posts database.PostStore
	users database.UserStore
	now   func() time.Time
}

func NewPosts(posts database.PostStore, users database.UserStore) *Posts {
	return &Posts{posts: posts, users: users, now: time.Now}
}

func loadPost(ctx context.Context, store database.PostStore, id, missing string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(missing)
	}
	p, err := store.FindPostByID(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound(missing)
	}
	if err != nil {
		return nil, persistence(err)
	}
	return p, nil
}

func parseActor(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, unauthorized("Invalid user ID")
	}
	return oid, nil
}

func (s *Posts) Create(ctx context.Context, ownerID, title, desc string) (*models.CreatedPost, error) {
	owner, err := parseActor(ownerID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validation("title is required")
	}

	post := &models.Post{
		UserID: owner,
		Title:  title,
		Desc:   desc,
		// Mongo stores millisecond precision; truncate so the response matches reads.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
	}
	if err := s.posts.SavePost(ctx, post); err != nil {
		log.Printf("[CreatePost] save failed: %v", err)
		return nil, persistence(err)
	}

	return &models.CreatedPost{
		ID:        post.ID,
		Title:     post.Title,
		Desc:      post.Desc,
		CreatedAt: post.CreatedAt,
	}, nil
}

func (s *Posts) Delete(ctx context.Context, actorID, postID string) (string, error) {
	post, err := loadPost(ctx, s.posts, postID, msgPostNotFound)
	if err != nil {
		return "", err
	}
	if post.UserID.Hex() != actorID {
		return "", unauthorized("You are not authorized to access this post")
	}

	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", notFound(msgPostNotFound)
		}
		log.Printf("[DeletePost] delete %s failed: %v", post.ID.Hex(), err)
		return "", persistence(err)
	}
	return "Post deleted successfully", nil
}

// ListByOwner returns the owner's posts newest first with like counts only.
func (s *Posts) ListByOwner(ctx context.Context, ownerID string) ([]models.PostSummary, error) {
	owner, err := parseActor(ownerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.FindPostsByOwner(ctx, owner)
	if err != nil {
		return nil, persistence(err)
	}

	out := make([]models.PostSummary, len(posts))
	for i, p := range posts {
		comments := make([]models.CommentSummary, len(p.Comments))
		for j, cm := range p.Comments {
			comments[j] = models.CommentSummary{UserID: cm.UserID, Comment: cm.Desc}
		}
		out[i] = models.PostSummary{
			ID:        p.ID,
			Title:     p.Title,
			Desc:      p.Desc,
			CreatedAt: p.CreatedAt,
			Comments:  comments,
			Likes:     len(p.Likes),
		}
	}
	return out, nil
}

func (s *Posts) Get(ctx context.Context, postID string) (*models.PostDetail, error) {
	post, err := loadPost(ctx, s.posts, postID, "No post found")
	if err != nil {
		return nil, err
	}

	detail := &models.PostDetail{
		Title:    post.Title,
		Desc:     post.Desc,
		Likes:    len(post.Likes),
		Comments: len(post.Comments),
	}

	owner, err := s.users.FindUserByID(ctx, post.UserID)
	switch {
	case err == nil:
		detail.PostedBy = owner.Name
	case errors.Is(err, database.ErrNotFound):
		log.Printf("[GetPost] owner %s of post %s is missing", post.UserID.Hex(), post.ID.Hex())
	default:
		return nil, persistence(err)
	}
	return detail, nil
}
