package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"socialhub/auth"
	"socialhub/database"
	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type recordingNotifier struct {
	mu     sync.Mutex
	events map[string][]Event
}

func (r *recordingNotifier) NotifyUser(userID string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string][]Event)
	}
	r.events[userID] = append(r.events[userID], event)
}

// checkKind asserts err is a domain error of the given kind and message.
func checkKind(c *C, err error, kind Kind, msg string) {
	c.Assert(err, NotNil)
	var e *Error
	c.Assert(errors.As(err, &e), Equals, true, Commentf("error %v", err))
	c.Check(e.Kind, Equals, kind)
	if msg != "" {
		c.Check(e.Message, Equals, msg)
	}
}

type baseSuite struct {
	ctx      context.Context
	store    *database.Memory
	notifier *recordingNotifier
}

func (s *baseSuite) setUp() {
	s.ctx = context.Background()
	s.store = database.NewMemory()
	s.notifier = &recordingNotifier{}
}

func (s *baseSuite) addUser(c *C, name string) *models.User {
	u := &models.User{Name: name, Email: name + "@x.com"}
	c.Assert(s.store.SaveUser(s.ctx, u), IsNil)
	return u
}

func (s *baseSuite) user(c *C, id primitive.ObjectID) *models.User {
	u, err := s.store.FindUserByID(s.ctx, id)
	c.Assert(err, IsNil)
	return u
}

// Accounts

type AccountsSuite struct {
	baseSuite
	tokens   *auth.TokenService
	accounts *Accounts
}

var _ = Suite(&AccountsSuite{})

func (s *AccountsSuite) SetUpTest(c *C) {
	s.setUp()
	s.tokens = auth.NewTokenService("s3cret", 0)
	s.accounts = NewAccounts(s.store, s.tokens)
	s.accounts.cost = bcrypt.MinCost
}

func (s *AccountsSuite) TestRegisterStoresHash(c *C) {
	u, err := s.accounts.Register(s.ctx, RegisterInput{Name: "alice", Email: " Alice@X.com ", Password: "pw1"})
	c.Assert(err, IsNil)
	c.Check(u.ID.IsZero(), Equals, false)
	c.Check(u.Email, Equals, "alice@x.com")
	c.Check(u.PasswordHash, Not(Equals), "pw1")
	c.Check(u.Followers, HasLen, 0)
	c.Check(u.Following, HasLen, 0)
}

func (s *AccountsSuite) TestRegisterValidation(c *C) {
	_, err := s.accounts.Register(s.ctx, RegisterInput{Email: "a@x.com", Password: "pw"})
	checkKind(c, err, KindValidation, "")

	_, err = s.accounts.Register(s.ctx, RegisterInput{Name: "a", Email: "not-an-email", Password: "pw"})
	checkKind(c, err, KindValidation, "email is not valid")

	// Bare host domains fail the same rule the HTTP binding uses.
	_, err = s.accounts.Register(s.ctx, RegisterInput{Name: "a", Email: "a@b", Password: "pw"})
	checkKind(c, err, KindValidation, "email is not valid")
}

func (s *AccountsSuite) TestRegisterDuplicateEmail(c *C) {
	_, err := s.accounts.Register(s.ctx, RegisterInput{Name: "a", Email: "a@x.com", Password: "pw"})
	c.Assert(err, IsNil)
	_, err = s.accounts.Register(s.ctx, RegisterInput{Name: "b", Email: "A@x.com", Password: "pw"})
	checkKind(c, err, KindConflict, "Email already in use")
}

func (s *AccountsSuite) TestAuthenticate(c *C) {
	u, err := s.accounts.Register(s.ctx, RegisterInput{Name: "alice", Email: "alice@x.com", Password: "pw1"})
	c.Assert(err, IsNil)

	_, err = s.accounts.Authenticate(s.ctx, "alice@x.com", "wrong")
	checkKind(c, err, KindNotFound, "Email or password is wrong")

	_, err = s.accounts.Authenticate(s.ctx, "nobody@x.com", "pw1")
	checkKind(c, err, KindNotFound, "Email or password is wrong")

	tok, err := s.accounts.Authenticate(s.ctx, "alice@x.com", "pw1")
	c.Assert(err, IsNil)
	id, err := s.tokens.Verify(tok)
	c.Assert(err, IsNil)
	c.Check(id, Equals, u.ID.Hex())
}

// Relationships

type RelationshipsSuite struct {
	baseSuite
	rel *Relationships
}

var _ = Suite(&RelationshipsSuite{})

func (s *RelationshipsSuite) SetUpTest(c *C) {
	s.setUp()
	s.rel = NewRelationships(s.store, s.notifier)
}

func (s *RelationshipsSuite) TestFollowIsSymmetric(c *C) {
	a, b := s.addUser(c, "alice"), s.addUser(c, "bob")

	msg, err := s.rel.Follow(s.ctx, a.ID.Hex(), b.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(msg, Equals, "You are now following bob")

	c.Check(s.user(c, a.ID).Following, DeepEquals, []primitive.ObjectID{b.ID})
	c.Check(s.user(c, b.ID).Followers, DeepEquals, []primitive.ObjectID{a.ID})

	_, err = s.rel.Follow(s.ctx, a.ID.Hex(), b.ID.Hex())
	checkKind(c, err, KindConflict, "Already following")
	c.Check(s.user(c, a.ID).Following, HasLen, 1)
}

func (s *RelationshipsSuite) TestFollowNotifiesTarget(c *C) {
	a, b := s.addUser(c, "alice"), s.addUser(c, "bob")
	_, err := s.rel.Follow(s.ctx, a.ID.Hex(), b.ID.Hex())
	c.Assert(err, IsNil)

	events := s.notifier.events[b.ID.Hex()]
	c.Assert(events, HasLen, 1)
	c.Check(events[0].Type, Equals, EventFollow)
	c.Check(events[0].Payload["userId"], Equals, a.ID.Hex())
}

func (s *RelationshipsSuite) TestSelfFollowNeverMutates(c *C) {
	a := s.addUser(c, "alice")
	_, err := s.rel.Follow(s.ctx, a.ID.Hex(), a.ID.Hex())
	checkKind(c, err, KindValidation, "You cannot follow or unfollow yourself")

	_, err = s.rel.Unfollow(s.ctx, a.ID.Hex(), a.ID.Hex())
	checkKind(c, err, KindValidation, "You cannot follow or unfollow yourself")

	u := s.user(c, a.ID)
	c.Check(u.Followers, HasLen, 0)
	c.Check(u.Following, HasLen, 0)
}

func (s *RelationshipsSuite) TestMissingUsers(c *C) {
	a := s.addUser(c, "alice")
	ghost := primitive.NewObjectID().Hex()

	_, err := s.rel.Follow(s.ctx, a.ID.Hex(), ghost)
	checkKind(c, err, KindNotFound, "User not found")

	_, err = s.rel.Follow(s.ctx, ghost, a.ID.Hex())
	checkKind(c, err, KindNotFound, "Current user not found")

	_, err = s.rel.Follow(s.ctx, a.ID.Hex(), "not-an-id")
	checkKind(c, err, KindNotFound, "User not found")

	_, err = s.rel.Unfollow(s.ctx, ghost, a.ID.Hex())
	checkKind(c, err, KindNotFound, "User not found")
}

func (s *RelationshipsSuite) TestUnfollowRoundTrip(c *C) {
	a, b := s.addUser(c, "alice"), s.addUser(c, "bob")
	before := []*models.User{s.user(c, a.ID), s.user(c, b.ID)}

	_, err := s.rel.Follow(s.ctx, a.ID.Hex(), b.ID.Hex())
	c.Assert(err, IsNil)
	msg, err := s.rel.Unfollow(s.ctx, a.ID.Hex(), b.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(msg, Equals, "Unfollowed bob successfully")

	after := []*models.User{s.user(c, a.ID), s.user(c, b.ID)}
	for i := range before {
		c.Check(after[i].Followers, DeepEquals, before[i].Followers)
		c.Check(after[i].Following, DeepEquals, before[i].Following)
	}

	_, err = s.rel.Unfollow(s.ctx, a.ID.Hex(), b.ID.Hex())
	checkKind(c, err, KindConflict, "Not following")
}

func (s *RelationshipsSuite) TestSecondWriteFailureIsSurfaced(c *C) {
	a, b := s.addUser(c, "alice"), s.addUser(c, "bob")
	s.store.FailSave = func(doc any) error {
		if u, ok := doc.(*models.User); ok && u.ID == b.ID {
			return errors.New("write rejected")
		}
		return nil
	}

	_, err := s.rel.Follow(s.ctx, a.ID.Hex(), b.ID.Hex())
	checkKind(c, err, KindPersistence, "write rejected")

	// Known gap: the first write stays committed.
	c.Check(s.user(c, a.ID).Following, HasLen, 1)
	c.Check(s.user(c, b.ID).Followers, HasLen, 0)
	c.Check(s.notifier.events, HasLen, 0)
}

func (s *RelationshipsSuite) TestProfile(c *C) {
	a, b, d := s.addUser(c, "alice"), s.addUser(c, "bob"), s.addUser(c, "dora")
	_, err := s.rel.Follow(s.ctx, b.ID.Hex(), a.ID.Hex())
	c.Assert(err, IsNil)
	_, err = s.rel.Follow(s.ctx, d.ID.Hex(), a.ID.Hex())
	c.Assert(err, IsNil)
	_, err = s.rel.Follow(s.ctx, a.ID.Hex(), d.ID.Hex())
	c.Assert(err, IsNil)

	p, err := s.rel.Profile(s.ctx, a.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(*p, Equals, models.Profile{Name: "alice", FollowerCount: 2, FollowingCount: 1})

	_, err = s.rel.Profile(s.ctx, primitive.NewObjectID().Hex())
	checkKind(c, err, KindNotFound, "User not found")
}

// Posts and engagement

type PostsSuite struct {
	baseSuite
	posts      *Posts
	engagement *Engagement
	owner      *models.User
	other      *models.User
}

var _ = Suite(&PostsSuite{})

func (s *PostsSuite) SetUpTest(c *C) {
	s.setUp()
	s.posts = NewPosts(s.store, s.store)
	s.engagement = NewEngagement(s.store, s.notifier)
	s.owner = s.addUser(c, "owner")
	s.other = s.addUser(c, "other")
}

func (s *PostsSuite) createPost(c *C, title string) *models.CreatedPost {
	p, err := s.posts.Create(s.ctx, s.owner.ID.Hex(), title, "desc of "+title)
	c.Assert(err, IsNil)
	return p
}

func (s *PostsSuite) post(c *C, id primitive.ObjectID) *models.Post {
	p, err := s.store.FindPostByID(s.ctx, id)
	c.Assert(err, IsNil)
	return p
}

func (s *PostsSuite) TestCreate(c *C) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	s.posts.now = func() time.Time { return fixed }

	created := s.createPost(c, "hello")
	c.Check(created.Title, Equals, "hello")
	c.Check(created.CreatedAt.Equal(fixed.Truncate(time.Millisecond)), Equals, true)

	stored := s.post(c, created.ID)
	c.Check(stored.UserID, Equals, s.owner.ID)
	c.Check(stored.Likes, HasLen, 0)
	c.Check(stored.Comments, HasLen, 0)

	_, err := s.posts.Create(s.ctx, s.owner.ID.Hex(), "  ", "")
	checkKind(c, err, KindValidation, "title is required")
}

func (s *PostsSuite) TestDeleteOwnership(c *C) {
	created := s.createPost(c, "mine")

	_, err := s.posts.Delete(s.ctx, s.other.ID.Hex(), created.ID.Hex())
	checkKind(c, err, KindUnauthorized, "You are not authorized to access this post")
	s.post(c, created.ID)

	msg, err := s.posts.Delete(s.ctx, s.owner.ID.Hex(), created.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(msg, Equals, "Post deleted successfully")

	_, err = s.posts.Get(s.ctx, created.ID.Hex())
	checkKind(c, err, KindNotFound, "No post found")

	_, err = s.posts.Delete(s.ctx, s.owner.ID.Hex(), created.ID.Hex())
	checkKind(c, err, KindNotFound, "Post not found")
}

func (s *PostsSuite) TestListByOwner(c *C) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.posts.now = func() time.Time { return at }
		s.createPost(c, title)
	}
	s.posts.now = time.Now
	newest, err := s.posts.ListByOwner(s.ctx, s.owner.ID.Hex())
	c.Assert(err, IsNil)
	c.Assert(newest, HasLen, 2)
	c.Check(newest[0].Title, Equals, "second")
	c.Check(newest[1].Title, Equals, "first")

	_, err = s.engagement.Like(s.ctx, s.other.ID.Hex(), newest[0].ID.Hex())
	c.Assert(err, IsNil)
	_, err = s.engagement.Comment(s.ctx, s.other.ID.Hex(), newest[0].ID.Hex(), "nice")
	c.Assert(err, IsNil)

	list, err := s.posts.ListByOwner(s.ctx, s.owner.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(list[0].Likes, Equals, 1)
	c.Check(list[0].Comments, DeepEquals, []models.CommentSummary{{UserID: s.other.ID, Comment: "nice"}})

	empty, err := s.posts.ListByOwner(s.ctx, s.other.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(empty, HasLen, 0)
}

func (s *PostsSuite) TestGetJoinsOwnerName(c *C) {
	created := s.createPost(c, "public")
	_, err := s.engagement.Like(s.ctx, s.other.ID.Hex(), created.ID.Hex())
	c.Assert(err, IsNil)

	detail, err := s.posts.Get(s.ctx, created.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(*detail, Equals, models.PostDetail{
		Title:    "public",
		Desc:     "desc of public",
		Likes:    1,
		Comments: 0,
		PostedBy: "owner",
	})

	_, err = s.posts.Get(s.ctx, "garbage")
	checkKind(c, err, KindNotFound, "No post found")
}

func (s *PostsSuite) TestLikeUnlikeCycle(c *C) {
	created := s.createPost(c, "likeable")
	actor, postID := s.other.ID.Hex(), created.ID.Hex()

	msg, err := s.engagement.Like(s.ctx, actor, postID)
	c.Assert(err, IsNil)
	c.Check(msg, Equals, "Liked successfully")
	c.Check(s.post(c, created.ID).Likes, DeepEquals, []primitive.ObjectID{s.other.ID})

	_, err = s.engagement.Like(s.ctx, actor, postID)
	checkKind(c, err, KindConflict, "Already liked")

	msg, err = s.engagement.Unlike(s.ctx, actor, postID)
	c.Assert(err, IsNil)
	c.Check(msg, Equals, "Unliked successfully")
	c.Check(s.post(c, created.ID).Likes, HasLen, 0)

	_, err = s.engagement.Unlike(s.ctx, actor, postID)
	checkKind(c, err, KindNotFound, "Not liked")
}

func (s *PostsSuite) TestEngagementOnMissingPost(c *C) {
	ghost := primitive.NewObjectID().Hex()
	_, err := s.engagement.Like(s.ctx, s.other.ID.Hex(), ghost)
	checkKind(c, err, KindNotFound, "Post not found")
	_, err = s.engagement.Unlike(s.ctx, s.other.ID.Hex(), ghost)
	checkKind(c, err, KindNotFound, "Post not found")
	_, err = s.engagement.Comment(s.ctx, s.other.ID.Hex(), ghost, "hi")
	checkKind(c, err, KindNotFound, "Post not found")
}

func (s *PostsSuite) TestCommentsAppendInOrder(c *C) {
	created := s.createPost(c, "thread")
	var ids []primitive.ObjectID
	for _, text := range []string{"one", "two", "three"} {
		id, err := s.engagement.Comment(s.ctx, s.other.ID.Hex(), created.ID.Hex(), text)
		c.Assert(err, IsNil)
		ids = append(ids, id)
	}

	comments := s.post(c, created.ID).Comments
	c.Assert(comments, HasLen, 3)
	for i, text := range []string{"one", "two", "three"} {
		c.Check(comments[i].ID, Equals, ids[i])
		c.Check(comments[i].Desc, Equals, text)
		c.Check(comments[i].UserID, Equals, s.other.ID)
	}

	_, err := s.engagement.Comment(s.ctx, s.other.ID.Hex(), created.ID.Hex(), " ")
	checkKind(c, err, KindValidation, "desc is required")
	c.Check(s.post(c, created.ID).Comments, HasLen, 3)
}

func (s *PostsSuite) TestOwnerIsNotNotifiedOfOwnActivity(c *C) {
	created := s.createPost(c, "self")
	_, err := s.engagement.Like(s.ctx, s.owner.ID.Hex(), created.ID.Hex())
	c.Assert(err, IsNil)
	c.Check(s.notifier.events, HasLen, 0)

	_, err = s.engagement.Comment(s.ctx, s.other.ID.Hex(), created.ID.Hex(), "hey")
	c.Assert(err, IsNil)
	events := s.notifier.events[s.owner.ID.Hex()]
	c.Assert(events, HasLen, 1)
	c.Check(events[0].Type, Equals, EventComment)
}

func (s *PostsSuite) TestSaveFailureIsPersistenceError(c *C) {
	created := s.createPost(c, "fragile")
	s.store.FailSave = func(any) error { return errors.New("disk full") }

	_, err := s.engagement.Like(s.ctx, s.other.ID.Hex(), created.ID.Hex())
	checkKind(c, err, KindPersistence, "disk full")
	c.Check(KindOf(err), Equals, KindPersistence)
	c.Check(KindOf(errors.New("plain")), Equals, KindInternal)
}
