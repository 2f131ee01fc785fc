package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"socialhub/database"
	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserNotFound        = "User not found"
	msgCurrentUserNotFound = "Current user not found"
	msgSelfFollow          = "You cannot follow or unfollow yourself"
)

// Relationships maintains the follower/following pair between two users.
//
// The two records are saved one after the other without a transaction. If the
// second save fails the relationship is left one-sided; the error is returned
// and logged but nothing is rolled back. Concurrent follow/unfollow calls on
// the same pair can also overwrite each other's sets.
type Relationships struct {
	users    database.UserStore
	notifier Notifier
}

func NewRelationships(users database.UserStore, notifier Notifier) *Relationships {
	return &Relationships{users: users, notifier: orNop(notifier)}
}

func (r *Relationships) loadUser(ctx context.Context, id, missing string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(missing)
	}
	u, err := r.users.FindUserByID(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound(missing)
	}
	if err != nil {
		return nil, persistence(err)
	}
	return u, nil
}

// pair loads target then actor and rejects self references.
func (r *Relationships) pair(ctx context.Context, actorID, targetID, actorMissing string) (actor, target *models.User, err error) {
	target, err = r.loadUser(ctx, targetID, msgUserNotFound)
	if err != nil {
		return nil, nil, err
	}
	actor, err = r.loadUser(ctx, actorID, actorMissing)
	if err != nil {
		return nil, nil, err
	}
	if actor.ID == target.ID {
		return nil, nil, validation(msgSelfFollow)
	}
	return actor, target, nil
}

func (r *Relationships) save(ctx context.Context, op string, actor, target *models.User) error {
	if err := r.users.SaveUser(ctx, actor); err != nil {
		log.Printf("[%s] saving %s failed: %v", op, actor.ID.Hex(), err)
		return persistence(err)
	}
	if err := r.users.SaveUser(ctx, target); err != nil {
		log.Printf("[%s] partial write: %s saved, %s failed: %v", op, actor.ID.Hex(), target.ID.Hex(), err)
		return persistence(err)
	}
	return nil
}

func (r *Relationships) Follow(ctx context.Context, actorID, targetID string) (string, error) {
	actor, target, err := r.pair(ctx, actorID, targetID, msgCurrentUserNotFound)
	if err != nil {
		return "", err
	}
	if actor.IsFollowing(target.ID) {
		return "", conflict("Already following")
	}

	actor.AddFollowing(target.ID)
	target.AddFollower(actor.ID)
	if err := r.save(ctx, "Follow", actor, target); err != nil {
		return "", err
	}

	r.notifier.NotifyUser(target.ID.Hex(), Event{
		Type: EventFollow,
		Payload: map[string]any{
			"userId": actor.ID.Hex(),
			"name":   actor.Name,
		},
	})
	return fmt.Sprintf("You are now following %s", target.Name), nil
}

func (r *Relationships) Unfollow(ctx context.Context, actorID, targetID string) (string, error) {
	actor, target, err := r.pair(ctx, actorID, targetID, msgUserNotFound)
	if err != nil {
		return "", err
	}
	if !actor.IsFollowing(target.ID) {
		return "", conflict("Not following")
	}

	actor.RemoveFollowing(target.ID)
	target.RemoveFollower(actor.ID)
	if err := r.save(ctx, "Unfollow", actor, target); err != nil {
		return "", err
	}
	return fmt.Sprintf("Unfollowed %s successfully", target.Name), nil
}

func (r *Relationships) Profile(ctx context.Context, id string) (*models.Profile, error) {
	u, err := r.loadUser(ctx, id, msgUserNotFound)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		Name:           u.Name,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Following),
	}, nil
}
